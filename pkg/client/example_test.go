package client_test

import (
	"context"
	"fmt"

	"github.com/daniacca/remcsim/pkg/client"
)

func ExampleSystemBuilder() {
	system := client.NewSystem("acid-base").
		Volume(500).
		Seed(42).
		Species("HA", 1).
		ChargedSpecies("A-", 2, -1).
		ChargedSpecies("H+", 3, 1).
		Reaction(client.NewReaction("dissociation").
			Educt("HA", 1).
			Product("A-", 1).
			Product("H+", 1).
			Equilibrium(1.8e-5),
		).
		Particles("HA", 200)

	cfg := system.Build()
	fmt.Printf("System: %s\n", cfg.Name)
	fmt.Printf("Species: %d\n", len(cfg.Species))
	fmt.Printf("Reactions: %d\n", len(cfg.Reactions))

	// Example: Apply to server (commented out for test)
	// ctx := context.Background()
	// runID, err := client.New("http://localhost:8080").ApplySystem(ctx, system)
	// if err != nil {
	// 	log.Fatal(err)
	// }
	_ = system
}

func ExampleClient_Step() {
	ctx := context.Background()
	c := client.New("http://localhost:8080")

	// This would run 1000 reaction moves on the server
	// Uncomment to actually send:
	// result, err := c.Step(ctx, 1000)
	// if err != nil {
	// 	log.Fatal(err)
	// }
	// fmt.Printf("accepted %d of %d moves\n", result.Accepted, result.Steps)

	_ = ctx
	_ = c
}

func ExampleClient_RegisterWebhook() {
	ctx := context.Background()
	c := client.New("http://localhost:8080")

	// Register a webhook that receives every move event as JSON
	// Uncomment to actually send:
	// err := c.RegisterWebhook(ctx, "my-hook", "https://example.com/hook", map[string]string{
	// 	"Authorization": "Bearer token",
	// })
	// if err != nil {
	// 	log.Fatal(err)
	// }

	_ = ctx
	_ = c
}
