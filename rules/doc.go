// Package rules builds record-level conditions for model schemas from small
// composable checks addressed by JSON Pointer:
//
//	order := model.Open("Order").
//		Field("items", algebra.MustSequence(item)).
//		Conditions(
//			rules.Condition("items-unique", rules.UniqueBy("/items", "sku")),
//			rules.Condition("express-needs-items",
//				rules.If("/express", rules.Eq, true).Then(rules.AtLeastOne("/items"))),
//		).
//		MustBuild()
package rules
