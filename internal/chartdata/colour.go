package chartdata

// Colour ramps used by the dashboards. The grey variants add a final entry for missing data.
var (
	RampRedBlue     = []string{"rgba(63,103,126,1)", "rgba(27,196,121,1)", "rgba(137,214,11,1)", "rgba(207,19,10,1)"}
	RampBlue        = []string{"rgba(27,55,74,1)", "rgba(0,96,196,1)", "rgba(0,129,196,1)", "rgba(141,245,252,1)"}
	RampRedBlueGrey = append(append([]string{}, RampRedBlue...), "rgba(200,200,200,1)")
	RampBlueGrey    = append(append([]string{}, RampBlue...), "rgba(200,200,200,1)")
)

// Ramps by name, as referenced from the dashboard layout.
var Ramps = map[string][]string{
	"redblue":     RampRedBlue,
	"blue":        RampBlue,
	"redbluegrey": RampRedBlueGrey,
	"bluegrey":    RampBlueGrey,
}

// RampColour picks the colour of series i out of n: ramp[min(i, n-1)], clamped
// to the last ramp entry.
func RampColour(ramp []string, i, n int) string {
	if len(ramp) == 0 {
		return ""
	}
	idx := min(i, n-1, len(ramp)-1)
	if idx < 0 {
		idx = 0
	}
	return ramp[idx]
}
