package charts

import (
	"io"

	"github.com/go-echarts/go-echarts/v2/components"
)

// Configurable is a chart whose option object can be exported.
type Configurable interface {
	Validate()
	JSON() map[string]interface{}
}

// OptionsJSON returns the chart's option object as the browser library would receive it.
func OptionsJSON(c Configurable) map[string]interface{} {
	c.Validate()
	return c.JSON()
}

// Page renders charts onto one HTML page.
func Page(w io.Writer, title, assetsHost string, cs ...components.Charter) error {
	page := components.NewPage()
	page.PageTitle = title
	if assetsHost != "" {
		page.SetAssetsHost(assetsHost)
	}
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(cs...)
	return page.Render(w)
}
