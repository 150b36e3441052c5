package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

var landingPageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8" />
<meta name="viewport" content="width=device-width, initial-scale=1.0" />
<title>Dreams LMS API</title>
<style>
body { font-family: Arial, sans-serif; margin: 0; background: linear-gradient(135deg,#1d2b64,#f8cdda); color: #fff; min-height: 100vh; display: flex; flex-direction: column; }
main { flex: 1; padding: 60px 20px; text-align: center; }
a.button { display: inline-block; margin: 10px; padding: 12px 24px; font-size: 16px; border-radius: 4px; text-decoration: none; background: rgba(255,255,255,0.2); color: #fff; transition: background 0.3s; }
a.button:hover { background: rgba(255,255,255,0.4); }
code { background: rgba(0,0,0,0.3); padding: 2px 6px; border-radius: 3px; }
footer { text-align: center; padding: 20px; font-size: 14px; opacity: 0.8; }
</style>
</head>
<body>
<main>
  <h1>Dreams LMS</h1>
  <p>Learning management backend: accounts, courses and dashboards.</p>
  <p>Sign up at <code>POST /api/v1/auth/signup</code>, sign in at <code>POST /api/v1/auth/signin</code>.</p>
  <a class="button" href="/swagger/index.html">API reference</a>
  <a class="button" href="/health">Health</a>
</main>
<footer>Dreams LMS API</footer>
</body>
</html>`

func RegisterPages(e *echo.Echo) {
	e.GET("/", func(c echo.Context) error {
		return c.HTML(http.StatusOK, landingPageHTML)
	})
}
