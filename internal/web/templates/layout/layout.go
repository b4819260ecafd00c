// Package layout provides the html shell and the centering container every
// page renders inside.
package layout

// FlashMessage is a one-shot notice shown at the top of the next page
type FlashMessage struct {
	Type    string
	Message string
}

// PageData is the data every full page needs
type PageData struct {
	Title string
	Flash *FlashMessage
}

func pageTitle(title string) string {
	if title == "" {
		return "Login"
	}
	return title + " | Login"
}

func (f *FlashMessage) visible() bool {
	return f != nil && f.Message != ""
}

func (f *FlashMessage) kindClass() string {
	if f.Type == "" {
		return "flash-info"
	}
	return "flash-" + f.Type
}
