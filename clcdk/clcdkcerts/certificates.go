// Package clcdkcerts provides a DNS-validated ACM wildcard certificate for the base
// domain. API Gateway uses the regional certificate created in the shared stack;
// CloudFront needs its own certificate created in us-east-1.
package clcdkcerts

import (
	"github.com/aws/aws-cdk-go/awscdk/v2/awscertificatemanager"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsroute53"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdkparams"
)

const paramsNamespace = "certs"

// Certificates provides access to a wildcard ACM certificate.
type Certificates interface {
	WildcardCertificate() awscertificatemanager.ICertificate
}

// Props configures the Certificates construct.
type Props struct {
	// HostedZone is used for DNS validation. Required.
	HostedZone awsroute53.IHostedZone
	// Store writes the certificate ARN to SSM so LookupCertificate can find it.
	Store bool
}

type certificates struct {
	certificate awscertificatemanager.ICertificate
}

// New creates a certificate for *.{zone} and {zone}.
func New(scope constructs.Construct, props Props) Certificates {
	scope = constructs.NewConstruct(scope, jsii.String("Certificates"))
	con := &certificates{}

	zoneName := props.HostedZone.ZoneName()
	con.certificate = awscertificatemanager.NewCertificate(scope, jsii.String("WildcardCertificate"),
		&awscertificatemanager.CertificateProps{
			DomainName:              jsii.Sprintf("*.%s", *zoneName),
			SubjectAlternativeNames: &[]*string{zoneName},
			Validation:              awscertificatemanager.CertificateValidation_FromDns(props.HostedZone),
		})

	if props.Store {
		clcdkparams.Store(scope, "CertificateArnParam", paramsNamespace, "wildcard-cert-arn",
			con.certificate.CertificateArn())
	}

	return con
}

// LookupCertificate references the certificate stored by the shared stack.
func LookupCertificate(scope constructs.Construct) awscertificatemanager.ICertificate {
	certArn := clcdkparams.LookupLocalShared(scope, paramsNamespace, "wildcard-cert-arn")
	return awscertificatemanager.Certificate_FromCertificateArn(scope,
		jsii.String("LookupWildcardCertificate"), certArn)
}

func (c *certificates) WildcardCertificate() awscertificatemanager.ICertificate {
	return c.certificate
}
