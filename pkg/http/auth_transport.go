package http

import "net/http"

const apiKeyHeader = "api-key"

type authTransport struct {
	token     string
	apiKey    string
	transport http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	reqCopy := req.Clone(req.Context())

	if t.token != "" {
		reqCopy.Header.Set("Authorization", "Bearer "+t.token)
	}
	if t.apiKey != "" {
		reqCopy.Header.Set(apiKeyHeader, t.apiKey)
	}

	return t.transport.RoundTrip(reqCopy)
}

// WithAuthToken sends token as a bearer Authorization header
func WithAuthToken(token string) HttpOpts {
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return &authTransport{
			token:     token,
			transport: rt,
		}
	})
}

// WithAPIKey sends key in the api-key header used by Azure OpenAI and Azure AI Search
func WithAPIKey(key string) HttpOpts {
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return &authTransport{
			apiKey:    key,
			transport: rt,
		}
	})
}
