/*
Package dsl provides a Go DSL for programmatically constructing parley dialogue documents.

It allows developers to define branching dialogues with a fluent builder
instead of hand-writing authoring JSON. This is particularly useful for unit
testing, fixtures and generated content.

Example usage:

	b := dsl.New()

	b.Add("n1").Start().Go("n2")

	b.Add("n2").
		Dialogue(domain.Bilingual("Customer", "Client"), domain.Bilingual("It's broken.", "C'est cassé.")).
		Go("n3")

	b.Add("n3").
		Choice(domain.Bilingual("Your answer?", "Votre réponse ?")).
		Correct("c1", domain.Bilingual("I'll help", "Je vais aider"), "n4").
		Wrong("c2", domain.Bilingual("Not my job", "Pas mon travail"), "n2")

	b.Add("n4").End()

	doc, err := b.Build()
*/
package dsl
