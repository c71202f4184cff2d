/*
Package dsl provides a fluent API to author dialogue graphs in Go code.

	g, err := dsl.New().
		Add("root").Root().Say("Hi! Hungry?").When("ordered", "order pizza", "buy pizza").
		Add("ordered").Say("Pizza is on its way.").When("cancelled", "cancel").
		Add("cancelled").Say("Order cancelled.").Terminal().
		Build()

Nodes keep their declaration order, and transitions keep the order in which
they were added, which decides ties during matching.
*/
package dsl
