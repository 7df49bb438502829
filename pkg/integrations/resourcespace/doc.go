// Package resourcespace provides a client for the ResourceSpace API, the
// asset catalog listing every image that should get a manifest.
//
// # Authentication
//
// Every request carries the API user in its query string and is signed with
// sha256(privateKey + query), hex encoded, in a trailing sign parameter:
//
//	user=alice&function=do_search&param1=&sign=3f1e...
//
// # Usage
//
//	client := resourcespace.NewClient(resourcespace.Config{
//	    APIURL:  "https://rs.example.org/api/",
//	    User:    "alice",
//	    Key:     os.Getenv("IMAGEHUB_API_KEY"),
//	})
//	refs, err := client.Search(ctx)
//	res, err := client.Resource(ctx, refs[0])
//
// Catalog responses are never cached: a run must always see the current
// catalog.
package resourcespace
