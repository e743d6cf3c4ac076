package rishiwrites

import (
	"github.com/a-h/templ"

	"github.com/rishiraval/rishiwrites/views"
)

// ViewFuncs holds the page components the handlers render. New fills any
// field left nil with the components from the views package.
type ViewFuncs struct {
	Home        func(views.HomeData) templ.Component
	Post        func(views.PostData) templ.Component
	NotFound    func(views.Chrome) templ.Component
	ServerError func(views.Chrome) templ.Component
}

func (v *ViewFuncs) setDefaults() {
	if v.Home == nil {
		v.Home = views.Home
	}
	if v.Post == nil {
		v.Post = views.Post
	}
	if v.NotFound == nil {
		v.NotFound = views.NotFound
	}
	if v.ServerError == nil {
		v.ServerError = views.ServerError
	}
}
