package model

import "time"

// Article is loaded through go/packages in tests.
//
//buildergen:generate
type Article struct {
	ID        string
	Title     string
	Body      *string `builder:"notnull"`
	Tags      []string
	Published time.Time
	draft     bool `builder:"-"`
}

//buildergen:generate
type Status int

type ignored struct{}
