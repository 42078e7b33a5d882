package svg

// Option applies a rendering option.
type Option func(*options)

type options struct {
	background string
	axisColor  string
	textColor  string
	fontFamily string
	fontSize   int
	palette    []string
	title      string
	ticks      int
}

func defaultOptions() options {
	return options{
		background: "#ffffff",
		axisColor:  "#9e9e9e",
		textColor:  "#212121",
		fontFamily: "Helvetica, Arial, sans-serif",
		fontSize:   12,
		palette:    []string{"#4e79a7", "#f28e2b", "#59a14f", "#e15759", "#76b7b2", "#edc948", "#b07aa1"},
		ticks:      8,
	}
}

// WithBackground sets the background fill.
func WithBackground(color string) Option {
	return func(o *options) {
		if color != "" {
			o.background = color
		}
	}
}

// WithFont sets the label font.
func WithFont(family string, size int) Option {
	return func(o *options) {
		if family != "" {
			o.fontFamily = family
		}
		if size > 0 {
			o.fontSize = size
		}
	}
}

// WithPalette sets the bar colours used for records without their own colour.
// Colours cycle by lane.
func WithPalette(colors ...string) Option {
	return func(o *options) {
		if len(colors) > 0 {
			o.palette = colors
		}
	}
}

// WithTitle adds a <title> element.
func WithTitle(title string) Option {
	return func(o *options) {
		o.title = title
	}
}

// WithTicks sets the approximate number of axis ticks; 0 hides the axis.
func WithTicks(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.ticks = n
		}
	}
}
