// Package stylegenie embeds the StyleGenie matching engine in a Go program:
// visual product search, atelier matching and catalog management without
// running the HTTP service.
//
//	client, _ := stylegenie.New(ctx,
//	    stylegenie.WithRedis("localhost:6379", ""),
//	    stylegenie.WithEmbedder(myCLIP),
//	    stylegenie.WithFeatureExtractor(myClassifier),
//	)
//	defer client.Close()
//
//	_ = client.Catalog().PutProduct(ctx, &stylegenie.Product{...})
//	res, _ := client.SearchProducts(ctx, stylegenie.SearchQuery{ImageURL: url})
//	for _, hit := range res.Items {
//	    fmt.Println(hit.Product.Name, hit.Score)
//	}
package stylegenie
