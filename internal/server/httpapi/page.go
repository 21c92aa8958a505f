package httpapi

import (
	"html/template"
	"net/http"
)

// errorPage is shown to a browser whose redemption link could not be
// honored. It deliberately says nothing about why the token was refused.
var errorPage = template.Must(template.New("error").Parse(`<!DOCTYPE html>
<html>
<head><title>Sign-in link problem</title></head>
<body>
<h1>{{.Title}}</h1>
<p>{{.Message}}</p>
<p><a href="{{.SiteRootURL}}">Return to the site</a></p>
</body>
</html>
`))

type errorPageData struct {
	Title       string
	Message     string
	SiteRootURL string
}

// renderErrorPage writes the HTML failure page with the given status.
func renderErrorPage(w http.ResponseWriter, status int, data errorPageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = errorPage.Execute(w, data)
}
