// Package templates provides starter project templates for rcsg create.
//
// A template is a set of files rendered with text/template using [[ ]]
// delimiters, so template markup may contain braces freely.
//
//	tmpl, err := templates.Get("site")
//	if err != nil {
//	    return err
//	}
//	err = tmpl.Create("my-site", templates.Config{ProjectName: "my-site"})
package templates
