// Package hostrouter dispatches HTTP requests on the Host header.
//
// Two pattern kinds are supported: exact hosts ("api.example.com") and
// single-label wildcards ("*.example.com", matching foo.example.com but not
// bar.foo.example.com). Exact patterns win. Matching is case-insensitive
// and ignores the port; IPv6 hosts keep their brackets.
//
//	router := hostrouter.New(hostrouter.Routes{
//	    "api.example.com": apiHandler,
//	    "*.example.com":   tenantHandler,
//	}, defaultHandler)
//	http.ListenAndServe(":8080", router)
package hostrouter
