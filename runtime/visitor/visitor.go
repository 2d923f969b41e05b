// Package visitor walks a stylesheet before it is compiled and records the
// alias edges the linker needs: one edge for every variable declared as
// exactly another variable ("@a: @b;").
package visitor

import (
	"log/slog"
	"strings"

	"github.com/opal-lang/colorprop/core/ast"
	"github.com/opal-lang/colorprop/core/invariant"
	"github.com/opal-lang/colorprop/runtime/resolve"
)

// Visitor records alias edges into a run context's trail.
type Visitor struct {
	trail  *resolve.Trail
	logger *slog.Logger

	declarations int
	recorded     int
}

// New creates a visitor writing to rc's trail.
func New(rc *resolve.Context) *Visitor {
	invariant.NotNil(rc, "resolve context")
	return &Visitor{trail: rc.Trail, logger: rc.Logger}
}

// Visit walks body in document order.
func (v *Visitor) Visit(body []ast.Statement) {
	ast.Walk(body, func(st ast.Statement) bool {
		if d, ok := st.(*ast.VarDecl); ok {
			v.VisitVarDecl(d)
		}
		return true
	})
}

// VisitVarDecl records d's edge if its value is a plain alias. It reports
// whether a new edge was added.
func (v *Visitor) VisitVarDecl(d *ast.VarDecl) bool {
	v.declarations++

	referenced, ok := AliasOf(d)
	if !ok {
		return false
	}
	if !v.trail.Record(d.Name, referenced) {
		return false
	}
	v.recorded++
	v.logger.Debug("alias edge", "source", d.Name, "referenced", referenced, "line", d.Position.Line)
	return true
}

// Declarations returns how many variable declarations were visited.
func (v *Visitor) Declarations() int { return v.declarations }

// Recorded returns how many edges were added to the trail.
func (v *Visitor) Recorded() int { return v.recorded }

// AliasOf returns the variable d is declared as, if its whole value is one
// statically named variable. "@@name" values are resolved at evaluation
// time and have no static edge.
func AliasOf(d *ast.VarDecl) (string, bool) {
	term, ok := d.Value.Single()
	if !ok || term.Kind != ast.TermVariable {
		return "", false
	}
	if strings.HasPrefix(term.Text, "@@") {
		return "", false
	}
	return term.Text, true
}
