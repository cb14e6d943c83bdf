// This file holds the parse-time validation of for_each blocks. Only
// checks that work without the full model belong here: when the `in`
// expression is a literal, its collection shape can be verified right away
// and misconfiguration reported with a source range. Everything that needs
// resolved channels (nesting, body multiplicity, iterability of referenced
// outputs) happens in the builder.

package hcl

import (
	"github.com/hashicorp/hcl/v2"
)

// validateForEachCollection performs static checks on a for_each `in`
// expression. Expressions with variables are deferred to the builder.
func validateForEachCollection(expr hcl.Expression) hcl.Diagnostics {
	var diags hcl.Diagnostics
	if expr == nil || len(expr.Variables()) > 0 {
		return diags
	}

	val, valDiags := expr.Value(nil)
	diags = append(diags, valDiags...)
	if valDiags.HasErrors() {
		return diags
	}

	ty := val.Type()
	isCollection := ty.IsTupleType() || ty.IsListType() || ty.IsSetType() || ty.IsMapType() || ty.IsObjectType()

	if !isCollection {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid for_each collection",
			Detail:   "The 'in' attribute must be a list, set, map, or a channel reference.",
			Subject:  expr.Range().Ptr(),
		})
		return diags
	}

	if ty.IsObjectType() {
		// An object literal is the map-of-channels form; with no variables
		// in the expression there are no channels, which can never
		// iterate.
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid for_each collection",
			Detail:   "An object used with 'in' must map names to channel references.",
			Subject:  expr.Range().Ptr(),
		})
		return diags
	}

	if val.LengthInt() == 0 {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagWarning,
			Summary:  "Empty for_each collection",
			Detail:   "The 'in' collection is empty; the block's component will never run.",
			Subject:  expr.Range().Ptr(),
		})
	}

	return diags
}
