package main

import (
	"github.com/spf13/cast"

	"github.com/teloquent/teloquent"
)

var (
	Profile = teloquent.Define("Profile")
	User    = teloquent.Define("User", teloquent.Options{
		Casts:   map[string]teloquent.CastType{"settings": teloquent.CastObject},
		Appends: []string{"handle"},
		Accessors: map[string]teloquent.Accessor{
			"handle": func(m *teloquent.Model) interface{} { return "@" + cast.ToString(m.Get("username")) },
		},
	})
)

func init() {
	User.Relation("profiles", func(m *teloquent.Model) teloquent.Relation {
		return m.BelongsToMany(Profile).WithPivot("state")
	})
	Profile.Relation("users", func(m *teloquent.Model) teloquent.Relation {
		return m.BelongsToMany(User).WithPivot("state")
	})
}
