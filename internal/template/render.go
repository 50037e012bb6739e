// Package template renders the two views of the portal: the login screen
// and the festive dashboard. Purely presentational; all state arrives in
// the data structs.
package template

import (
	"fmt"
	"html/template"
	"io"

	"github.com/greetings-portal/web/internal/model"
)

type LoginData struct {
	Notices []model.Notice
}

type DashboardData struct {
	FirstName  string
	FullName   string
	DraftText  string
	Attachment *AttachmentData
	Submission model.SubmissionState
	Notices    []model.Notice
}

type AttachmentData struct {
	Name string
	Kind model.AttachmentKind
	Size string
}

// AttachmentDataFromModel - 스테이징된 첨부 파일의 표시용 데이터 생성
func AttachmentDataFromModel(att *model.Attachment) *AttachmentData {
	if att == nil {
		return nil
	}
	return &AttachmentData{
		Name: att.Name,
		Kind: att.Kind,
		Size: formatSize(att.Size),
	}
}

func formatSize(size int64) string {
	const mib = 1024 * 1024
	if size >= mib {
		return fmt.Sprintf("%.1f MB", float64(size)/mib)
	}
	return fmt.Sprintf("%.0f KB", float64(size)/1024)
}

var (
	loginTmpl     = template.Must(template.New("login").Parse(loginPage))
	dashboardTmpl = template.Must(template.New("dashboard").Funcs(template.FuncMap{
		"submitting": func(s model.SubmissionState) bool { return s == model.SubmissionSubmitting },
		"submitted":  func(s model.SubmissionState) bool { return s == model.SubmissionSubmitted },
	}).Parse(dashboardPage))
)

func RenderLogin(w io.Writer, data LoginData) error {
	return loginTmpl.Execute(w, data)
}

func RenderDashboard(w io.Writer, data DashboardData) error {
	return dashboardTmpl.Execute(w, data)
}

const loginPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1.0" />
  <title>Welcome</title>
  <style>
    body { margin: 0; min-height: 100vh; display: flex; align-items: center; justify-content: center;
           background: linear-gradient(135deg, #0f172a, #1e3a8a, #0f172a);
           font-family: 'Segoe UI', system-ui, sans-serif; color: #f1f5f9; }
    .card { background: rgba(255,255,255,0.08); border: 1px solid rgba(255,255,255,0.2);
            border-radius: 24px; padding: 48px; max-width: 420px; text-align: center; }
    h1 { font-size: 40px; margin: 0 0 8px; }
    p { color: #94a3b8; margin: 0 0 32px; }
    .signin { display: inline-block; background: linear-gradient(90deg, #a855f7, #3b82f6);
              color: #fff; text-decoration: none; padding: 16px 32px; border-radius: 16px;
              font-size: 18px; font-weight: 600; }
    .notice-error { color: #f87171; margin-top: 24px; }
  </style>
</head>
<body>
  <div class="card">
    <h1>Welcome</h1>
    <p>Sign in to access your account</p>
    <a class="signin" href="/auth/signin">Continue with Microsoft</a>
    {{range .Notices}}<div class="notice-{{.Kind}}">{{.Message}}</div>{{end}}
  </div>
</body>
</html>
`

const dashboardPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1.0" />
  <title>Happy Diwali</title>
  <style>
    body { margin: 0; min-height: 100vh; background: #f8fafc; color: #0f172a;
           font-family: 'Segoe UI', system-ui, sans-serif; }
    header { display: flex; justify-content: space-between; align-items: center;
             padding: 16px 32px; background: #fff; border-bottom: 1px solid #e2e8f0; }
    main { max-width: 720px; margin: 0 auto; padding: 48px 24px; }
    .greeting { font-size: 36px; font-weight: 700; margin-bottom: 8px;
                background: linear-gradient(90deg, #ea580c, #d946ef); -webkit-background-clip: text;
                background-clip: text; color: transparent; }
    .sub { color: #64748b; margin-bottom: 40px; }
    .feedback { background: #fff; border: 1px solid #e2e8f0; border-radius: 16px; padding: 24px; }
    textarea { width: 100%; min-height: 120px; border: 1px solid #cbd5e1; border-radius: 8px;
               padding: 12px; font: inherit; box-sizing: border-box; }
    .attachment { display: flex; align-items: center; gap: 8px; margin: 12px 0; color: #475569; }
    button { background: #2563eb; color: #fff; border: 0; border-radius: 8px;
             padding: 12px 24px; font-size: 16px; cursor: pointer; }
    button:disabled { background: #94a3b8; cursor: not-allowed; }
    .remove { background: #dc2626; padding: 6px 12px; font-size: 13px; }
    .notice-success { color: #16a34a; margin-top: 12px; }
    .notice-error { color: #dc2626; margin-top: 12px; }
  </style>
</head>
<body>
  <header>
    <div>{{.FullName}}</div>
    <form method="post" action="/auth/signout"><button type="submit">Sign out</button></form>
  </header>
  <main>
    <div class="greeting">Happy Diwali, {{.FirstName}}!</div>
    <p class="sub">Wishing you a festival of lights filled with joy and prosperity.</p>

    <div class="feedback">
      <h2>Share your festive wishes</h2>
      <form method="post" action="/dashboard/feedback">
        <textarea name="text" placeholder="Write your message..." {{if or (submitting .Submission) (submitted .Submission)}}disabled{{end}}>{{.DraftText}}</textarea>
        <button type="submit" {{if or (submitting .Submission) (submitted .Submission)}}disabled{{end}}>
          {{if submitting .Submission}}Submitting...{{else if submitted .Submission}}Submitted!{{else}}Submit Feedback{{end}}
        </button>
      </form>

      {{if .Attachment}}
      <div class="attachment">
        <span>{{.Attachment.Name}} ({{.Attachment.Kind}}, {{.Attachment.Size}})</span>
        <form method="post" action="/dashboard/attachment/remove">
          <button class="remove" type="submit">Remove</button>
        </form>
      </div>
      {{else}}
      <form method="post" action="/dashboard/attachment" enctype="multipart/form-data">
        <input type="file" name="file" accept="image/*,video/*" />
        <button type="submit">Attach</button>
      </form>
      {{end}}

      {{range .Notices}}<div class="notice-{{.Kind}}">{{.Message}}</div>{{end}}
    </div>
  </main>
</body>
</html>
`
