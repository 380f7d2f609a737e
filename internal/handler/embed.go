package handler

import (
	"html/template"
	"strings"

	"agent-service/internal/model"
)

// The snippet a site owner pastes into their page. The runtime script reads
// the data-* attributes off the container div to configure itself.
var embedTemplate = template.Must(template.New("embed").Parse(
	`<div id="ai-agent-widget"
     data-widget-id="{{.WidgetID}}"
     data-agent-id="{{.AgentID}}"
     data-agent-name="{{.AgentName}}"
     data-project-name="{{.ProjectName}}"
     data-theme="{{.Theme}}"
     data-position="{{.Position}}"
     data-greeting="{{.Greeting}}"></div>
<script src="{{.ScriptURL}}" async></script>`))

type embedParams struct {
	WidgetID    uint
	AgentID     uint
	AgentName   string
	ProjectName string
	Theme       string
	Position    string
	Greeting    string
	ScriptURL   string
}

// RenderEmbed produces the embed snippet for a widget. Name fields come from
// user input, so rendering goes through html/template for escaping. Output
// is deterministic for a fixed widget configuration.
func RenderEmbed(widget *model.Widget, agentName, projectName, scriptURL string) (string, error) {
	var out strings.Builder
	err := embedTemplate.Execute(&out, embedParams{
		WidgetID:    widget.ID,
		AgentID:     widget.AgentID,
		AgentName:   agentName,
		ProjectName: projectName,
		Theme:       widget.Theme,
		Position:    widget.Position,
		Greeting:    widget.Greeting,
		ScriptURL:   scriptURL,
	})
	if err != nil {
		return "", err
	}
	return out.String(), nil
}
