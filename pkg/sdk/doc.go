// Package recodex embeds the catalog recommendation engine in a Go program,
// without the HTTP server.
//
// The corpus is loaded once at New and never changes. Text ranking needs an
// Embedder producing vectors from the same model as the corpus; filtering,
// basic recommendations and item-to-item similarity work without one.
//
//	client, _ := recodex.New(ctx,
//	    recodex.WithCorpusFile("data/documentos_con_embeddings.json"),
//	    recodex.WithEmbedder(myEmbedder),
//	)
//	hits, _ := client.RankByText(ctx, "smart tv 4k 55 pulgadas", 5)
//	_ = client.Render(os.Stdout, hits)
//
//	hits, _ = client.FilterByAttributes(ctx, recodex.Filter{
//	    Brand:    recodex.String("samsung"),
//	    PriceMax: recodex.Float(500000),
//	}, 5)
package recodex
