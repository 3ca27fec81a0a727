package http

import (
	"html/template"
	"net/http"

	"github.com/runclub/paceline/pkg/utils/errutil"
	"github.com/runclub/paceline/pkg/utils/logging"
)

const pageStyle = `
body {
  font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
  max-width: 600px;
  margin: 50px auto;
  padding: 20px;
  line-height: 1.6;
}
h1 { color: #333; }
input, button {
  font-size: 16px;
  padding: 8px;
  margin: 4px 0;
}
button {
  background: #4a154b;
  color: white;
  border: none;
  border-radius: 4px;
  padding: 10px 20px;
  cursor: pointer;
}
`

var homeTmpl = template.Must(template.New("home").Parse(`<!DOCTYPE html>
<html>
<head>
  <title>Workout Tracker</title>
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <style>` + pageStyle + `</style>
</head>
<body>
  <h1>🏃 Workout Tracker</h1>
  <p>Connect your fitness accounts to auto-post workouts to Slack.</p>

  <h2>Step 1: Verify your Slack account</h2>
  <form method="POST" action="/verify/slack/start">
    <label for="slack_user_id">Slack Member ID (starts with U):</label><br>
    <input type="text" id="slack_user_id" name="slack_user_id" placeholder="U0123ABCDEF" required><br>
    <button type="submit">Send verification link</button>
  </form>

  <h2>Step 2: Connect a service</h2>
  <form method="GET" action="/auth/strava/start">
    <label for="strava_slack_user_id">Slack Member ID (optional, links posts to you):</label><br>
    <input type="text" id="strava_slack_user_id" name="slack_user_id" placeholder="U0123ABCDEF"><br>
    <button type="submit">Connect Strava</button>
  </form>
  <form method="GET" action="/auth/peloton/start">
    <label for="peloton_slack_user_id">Slack Member ID (must be verified):</label><br>
    <input type="text" id="peloton_slack_user_id" name="slack_user_id" placeholder="U0123ABCDEF" required><br>
    <button type="submit">Connect Peloton</button>
  </form>
</body>
</html>
`))

var messageTmpl = template.Must(template.New("message").Parse(`<!DOCTYPE html>
<html>
<head>
  <title>{{.Title}}</title>
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <style>` + pageStyle + `</style>
</head>
<body>
  <h1>{{.Heading}}</h1>
  {{range .Paragraphs}}<p>{{.}}</p>
  {{end}}<a href="/">← Go back</a>
</body>
</html>
`))

var pelotonFormTmpl = template.Must(template.New("peloton").Parse(`<!DOCTYPE html>
<html>
<head>
  <title>Connect Peloton</title>
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <style>` + pageStyle + `</style>
</head>
<body>
  <h1>🚴 Connect Peloton</h1>
  <p>Enter your Peloton credentials. Your password is used once to log in and is never stored.</p>
  <form method="POST" action="/auth/peloton/login">
    <input type="hidden" name="slack_user_id" value="{{.SlackUserID}}">
    <label for="username">Username or email:</label><br>
    <input type="text" id="username" name="username" required><br>
    <label for="password">Password:</label><br>
    <input type="password" id="password" name="password" required><br>
    <button type="submit">Connect</button>
  </form>
</body>
</html>
`))

type messagePage struct {
	Title      string
	Heading    string
	Paragraphs []string
}

func (s *Server) renderMessage(w http.ResponseWriter, r *http.Request, status int, page messagePage) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := messageTmpl.Execute(w, page); err != nil {
		errutil.Handle(r.Context(), err, "failed to render page")
	}
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := homeTmpl.Execute(w, nil); err != nil {
		errutil.Handle(r.Context(), err, "failed to render home page")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write([]byte(`{"ok":true}`)); err != nil {
		logging.From(r.Context()).Warn("failed to write health response", "error", err)
	}
}
