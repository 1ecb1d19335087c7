package renderer

import (
	"html/template"
)

const (
	portfolioSkillLimit   = 10
	portfolioJobLimit     = 3
	portfolioBulletLimit  = 3
	portfolioProjectLimit = 3
)

// portfolioView is the data handed to the fallback template.
type portfolioView struct {
	Name      string
	Headline  string
	Email     string
	Phone     string
	Location  string
	LinkedIn  string
	GitHub    string
	Skills    []string
	Jobs      []jobView
	Projects  []projectView
	Education []educationView
}

type jobView struct {
	Title   string
	Company string
	Dates   string
	Bullets []string
}

type projectView struct {
	Name         string
	Description  string
	Technologies []string
	Link         string
}

type educationView struct {
	Degree      string
	Institution string
	Year        string
}

//nolint:gochecknoglobals // parsed once
var portfolioTemplate = template.Must(template.New("portfolio").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Name}} - Portfolio</title>
<style>
*{margin:0;padding:0;box-sizing:border-box}
body{font-family:-apple-system,BlinkMacSystemFont,"Segoe UI",Roboto,sans-serif;line-height:1.6;color:#1f2933;background:#f5f7fa}
header{background:linear-gradient(135deg,#0a2540,#1e4976);color:#fff;padding:4rem 1.5rem;text-align:center}
header h1{font-size:2.6rem;margin-bottom:.5rem}
header p{opacity:.9}
.contact a{color:#fff;margin:0 .5rem}
main{max-width:900px;margin:0 auto;padding:2rem 1.5rem}
section{background:#fff;border-radius:8px;padding:1.5rem;margin-bottom:1.5rem;box-shadow:0 1px 3px rgba(0,0,0,.08)}
h2{color:#0a2540;margin-bottom:1rem}
.job,.project{margin-bottom:1.2rem}
.meta{color:#52606d;font-size:.9rem}
ul{margin-left:1.2rem}
.skills span{display:inline-block;background:#e4ecf7;color:#0a2540;border-radius:4px;padding:.2rem .6rem;margin:.2rem}
footer{text-align:center;color:#7b8794;padding:2rem}
</style>
</head>
<body>
<header>
<h1>{{.Name}}</h1>
{{if .Headline}}<p>{{.Headline}}</p>{{end}}
<p class="contact">{{if .Email}}<a href="mailto:{{.Email}}">{{.Email}}</a>{{end}}{{if .Phone}} {{.Phone}}{{end}}{{if .Location}} {{.Location}}{{end}}</p>
<p class="contact">{{if .LinkedIn}}<a href="{{.LinkedIn}}">LinkedIn</a>{{end}}{{if .GitHub}}<a href="{{.GitHub}}">GitHub</a>{{end}}</p>
</header>
<main>
{{if .Jobs}}<section id="experience">
<h2>Experience</h2>
{{range .Jobs}}<div class="job">
<h3>{{.Title}}</h3>
<p class="meta">{{.Company}}{{if .Dates}} | {{.Dates}}{{end}}</p>
{{if .Bullets}}<ul>{{range .Bullets}}<li>{{.}}</li>{{end}}</ul>{{end}}
</div>
{{end}}</section>{{end}}
{{if .Projects}}<section id="projects">
<h2>Projects</h2>
{{range .Projects}}<div class="project">
<h3>{{if .Link}}<a href="{{.Link}}">{{.Name}}</a>{{else}}{{.Name}}{{end}}</h3>
{{if .Description}}<p>{{.Description}}</p>{{end}}
{{if .Technologies}}<p class="meta">{{range $i, $t := .Technologies}}{{if $i}}, {{end}}{{$t}}{{end}}</p>{{end}}
</div>
{{end}}</section>{{end}}
{{if .Skills}}<section id="skills">
<h2>Skills</h2>
<div class="skills">{{range .Skills}}<span>{{.}}</span>{{end}}</div>
</section>{{end}}
{{if .Education}}<section id="education">
<h2>Education</h2>
{{range .Education}}<p><strong>{{.Degree}}</strong>{{if .Institution}}, {{.Institution}}{{end}}{{if .Year}} ({{.Year}}){{end}}</p>
{{end}}</section>{{end}}
</main>
<footer>{{.Name}}</footer>
</body>
</html>
`))
