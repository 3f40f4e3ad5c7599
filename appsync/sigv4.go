package appsync

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
)

// Signer is the request-signer collaborator from spec.md §1 ("the request
// signer (treated as an opaque function)"). AuthHeaderBuilder calls it to
// sign the synthetic POST request used for AWS_IAM authorization; it never
// inspects credentials itself.
type Signer interface {
	Sign(ctx context.Context, method, rawURL string, body []byte, headers map[string]string) (map[string]string, error)
}

// SigV4Signer signs requests with AWS Signature Version 4 using the
// aws-sdk-go-v2 signer. It is the default, real implementation of Signer;
// this is the one dependency in the module not grounded in the retrieved
// pack (see DESIGN.md).
type SigV4Signer struct {
	CredentialsProvider aws.CredentialsProvider
	Region              string
	Service             string
}

// NewSigV4Signer creates a signer for the appsync service in region,
// pulling credentials from credentialsProvider on every Sign call so
// rotated/STS credentials are picked up automatically.
func NewSigV4Signer(credentialsProvider aws.CredentialsProvider, region string) *SigV4Signer {
	return &SigV4Signer{
		CredentialsProvider: credentialsProvider,
		Region:              region,
		Service:             "appsync",
	}
}

// Sign implements Signer.
func (s *SigV4Signer) Sign(ctx context.Context, method, rawURL string, body []byte, headers map[string]string) (map[string]string, error) {
	creds, err := s.CredentialsProvider.Retrieve(ctx)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	sum := sha256.Sum256(body)
	payloadHash := hex.EncodeToString(sum[:])
	signer := v4.NewSigner()
	err = signer.SignHTTP(ctx, creds, req, payloadHash, s.Service, s.Region, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	signed := make(map[string]string, len(headers)+3)
	for k := range headers {
		signed[k] = req.Header.Get(k)
	}
	signed["Authorization"] = req.Header.Get("Authorization")
	signed["X-Amz-Date"] = req.Header.Get("X-Amz-Date")
	if token := req.Header.Get("X-Amz-Security-Token"); token != "" {
		signed["X-Amz-Security-Token"] = token
	}

	return signed, nil
}
