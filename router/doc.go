/*
Package router defines the route table using Go 1.22+ method patterns.

	GET  /health
	GET  /api/config
	POST /api/session/start
	POST /api/session/finish
	POST /api/record
	GET  /api/export/csv
	GET  /images/subsets/{subset_id}/{mode_id}/{path...}
	GET  /

API routes are wrapped with request logging; CORS is applied around the whole
mux in main.
*/
package router
