package parley_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/pkg/adapters/memory"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/dsl"
	"github.com/aretw0/parley/pkg/engine"
)

// ExampleNewEngine plays a short evaluated exchange built with the DSL.
func ExampleNewEngine() {
	b := dsl.New().Title(domain.Bilingual("Greeting", "Salutation"))
	b.Add("start").Start().Go("hello")
	b.Add("hello").Dialogue(domain.Bilingual("Guest", "Invité"), domain.Bilingual("Hello there.", "Bonjour.")).Go("reply")
	b.Add("reply").Choice(domain.Bilingual("Answer?", "Répondre ?")).
		Correct("polite", domain.Bilingual("Good morning!", "Bonjour !"), "end").
		Wrong("rude", domain.Bilingual("What?", "Quoi ?"), "hello")
	b.Add("end").End()

	s, err := parley.Compile(b.MustBuild())
	if err != nil {
		log.Fatal(err)
	}

	rec := memory.NewRecorder()
	eng := parley.NewEngine(s, engine.WithSessionID("demo"), engine.WithRecorder(rec))

	ctx := context.Background()
	unit, _ := eng.Start(ctx)
	fmt.Println(unit.Line.Text.Resolve(domain.LangFR, domain.LangEN))

	unit, _ = eng.Advance(ctx)
	fmt.Println(unit.Prompt.Resolve(domain.LangEN, domain.LangEN), unit.Classification)

	fb, unit, _ := eng.Choose(ctx, "rude")
	fmt.Println("correct:", fb.ChosenIsCorrect, "back at", unit.NodeID)

	unit, _ = eng.Advance(ctx)
	_, unit, _ = eng.Choose(ctx, "polite")
	fmt.Println("ended:", unit.Ended())

	correct, total := rec.Score("demo")
	fmt.Printf("score: %d/%d\n", correct, total)

	// Output:
	// Bonjour.
	// Answer? evaluated
	// correct: false back at hello
	// ended: true
	// score: 1/2
}
