package rod_test

import (
	"testing"

	"github.com/fwojciec/mise/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/stretchr/testify/assert"
)

func TestBlocked(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		resource proto.NetworkResourceType
		host     string
		want     bool
	}{
		{name: "images are blocked", resource: proto.NetworkResourceTypeImage, host: "www.example.com", want: true},
		{name: "fonts are blocked", resource: proto.NetworkResourceTypeFont, host: "fonts.example.com", want: true},
		{name: "media is blocked", resource: proto.NetworkResourceTypeMedia, host: "www.example.com", want: true},
		{name: "analytics scripts are blocked", resource: proto.NetworkResourceTypeScript, host: "www.google-analytics.com", want: true},
		{name: "tag manager is blocked", resource: proto.NetworkResourceTypeScript, host: "googletagmanager.com", want: true},
		{name: "documents load", resource: proto.NetworkResourceTypeDocument, host: "www.example.com", want: false},
		{name: "site scripts load", resource: proto.NetworkResourceTypeScript, host: "www.example.com", want: false},
		{name: "lookalike hosts load", resource: proto.NetworkResourceTypeScript, host: "notdoubleclick.net", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, rod.Blocked(tt.resource, tt.host))
		})
	}
}
