// Package cdk declares the stacks of the samples. Every environment gets its own copy
// of each sample stack; DNS and certificates live in the shared stack.
package cdk

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdkcerts"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdkdns"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdkutil"
)

// Shared holds the environment independent resources.
type Shared struct {
	// DNS is nil when no base domain is configured.
	DNS          clcdkdns.DNS
	Certificates clcdkcerts.Certificates
}

// HasDomain reports whether custom domains can be used.
func (s *Shared) HasDomain() bool {
	return s != nil && s.DNS != nil
}

// NewShared creates the hosted zone and the regional wildcard certificate when a
// base domain is configured.
func NewShared(stack awscdk.Stack) *Shared {
	shared := &Shared{}
	if !clcdkutil.HasBaseDomainName(stack) {
		return shared
	}

	shared.DNS = clcdkdns.New(stack)
	shared.Certificates = clcdkcerts.New(stack, clcdkcerts.Props{
		HostedZone: shared.DNS.HostedZone(),
		Store:      true,
	})

	return shared
}
