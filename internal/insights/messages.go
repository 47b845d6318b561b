package insights

import "errors"

// ErrMissingData is returned when no report is supplied.
var ErrMissingData = errors.New("analytics data is required")

// Markdown shown in place of a narrative.
const (
	MissingDataMarkdown = "## ERROR\n\n* **Missing Data**: Analytics data is required to generate insights."

	UnavailableMarkdown = `
## AI INSIGHTS UNAVAILABLE

* **Configuration Required**: AI insights are not available at this time.
* **API Setup Needed**: Please configure your AI provider credentials in the settings.
* **Next Steps**: Visit the settings page and enter a valid OpenAI or Anthropic API key to enable AI-powered Scrum Master insights.
`

	ConfigurationRequiredMarkdown = `
## CONFIGURATION REQUIRED

* **API Key Missing**: To access professional Scrum Master insights, please configure your AI provider credentials.
* **Easy Setup**: Navigate to the settings page and enter your API key in the appropriate field.
* **Benefits**: Once configured, you'll receive detailed sprint performance analysis based on your team's actual data.
`
)
