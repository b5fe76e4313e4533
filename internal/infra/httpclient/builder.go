package httpclient

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/aalvaropc/pdu-exporter/internal/buildinfo"
	"github.com/aalvaropc/pdu-exporter/internal/domain"
)

// BuildRequest builds the GET request for a PDU document URL.
func BuildRequest(ctx context.Context, rawURL string) (*http.Request, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, &domain.OpError{
			Op:   "httpclient.build",
			Kind: domain.KindInvalidConfig,
			Err:  domain.ErrInvalidConfig,
		}
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &domain.OpError{
			Op:   "httpclient.build",
			Kind: domain.KindInvalidConfig,
			Path: rawURL,
			Err:  err,
		}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, &domain.OpError{
			Op:   "httpclient.build",
			Kind: domain.KindInvalidConfig,
			Path: rawURL,
			Err:  domain.ErrInvalidConfig,
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &domain.OpError{
			Op:   "httpclient.build",
			Kind: domain.KindInvalidConfig,
			Path: rawURL,
			Err:  err,
		}
	}

	req.Header.Set("Accept", "application/xml, text/xml;q=0.9, */*;q=0.1")
	req.Header.Set("User-Agent", buildinfo.Name+"/"+buildinfo.Version)
	return req, nil
}
