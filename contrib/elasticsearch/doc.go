// Package elasticsearch traces the requests made by the go-elasticsearch
// clients.
//
// Every client variant linked into the binary (go-elasticsearch v5 to v9) owns
// a TransportClass: the request-performing method shared by all of its
// transports. Patch installs the tracing interceptor into those methods and
// Unpatch restores them. Clients opt in by being built on a Transport:
//
//	elasticsearch.Patch()
//	defer elasticsearch.Unpatch()
//
//	t, err := elasticsearch.WrapRoundTripper("elasticsearch8", http.DefaultTransport)
//	if err != nil {
//		return err
//	}
//	elasticsearch.NewPin(otel.GetTracerProvider()).Onto(t)
//
//	es, err := elasticsearch8.NewClient(elasticsearch8.Config{Transport: t})
//
// A Transport without an enabled Pin (and whose class has none either) is a
// plain pass-through, whether or not the class is patched.
//
// Each traced call produces one "elasticsearch.query" span carrying the
// method, path, encoded parameters and, for GET and POST, the request body.
// The server reported "took" duration is recorded when the result carries one.
// With Tracing.HTTPClientSpans set in the config, the HTTP round trip is
// traced as well, as a child of the query span.
//
// Patch and Unpatch are meant to run at startup and shutdown. They are safe
// to call while requests are in flight, but a request that already entered
// the class method keeps the behavior it started with.
package elasticsearch
