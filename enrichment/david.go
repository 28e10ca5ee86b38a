package enrichment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"strings"
	"time"
)

// DefaultDAVIDEndpoint is the SOAP endpoint of the DAVID web service.
const DefaultDAVIDEndpoint = "https://davidbioinformatics.nih.gov/webservice/services/DAVIDWebService"

// EnrichmentService is one authenticated conversation with the enrichment service.
type EnrichmentService interface {
	Authenticate(ctx context.Context, credential string) (bool, error)
	AddList(ctx context.Context, ids, idType, listName string, listType int) (float64, error)
	SetCategories(ctx context.Context, categories []string) error
	GetChartReport(ctx context.Context, threshold float64, count int) ([]RawRecord, error)
}

// SessionFactory opens a fresh enrichment session. Every pipeline run gets its own.
type SessionFactory func() (EnrichmentService, error)

// DAVIDSession talks to the DAVID SOAP service. The service keys the uploaded
// list to the HTTP session, so each session owns a cookie jar.
type DAVIDSession struct {
	endpoint string
	http     *httpClient
}

// NewDAVIDSessions returns a factory of DAVID sessions sharing cfg.
func NewDAVIDSessions(cfg DAVIDConfig) SessionFactory {
	return func() (EnrichmentService, error) {
		return NewDAVIDSession(cfg, nil)
	}
}

// NewDAVIDSession opens a session. transport may be nil.
func NewDAVIDSession(cfg DAVIDConfig, transport http.RoundTripper) (*DAVIDSession, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	endpoint := strings.TrimSuffix(strings.TrimSuffix(cfg.Endpoint, "?wsdl"), "/")
	if endpoint == "" {
		endpoint = DefaultDAVIDEndpoint
	}
	return &DAVIDSession{
		endpoint: endpoint,
		http: newHTTPClient(clientConfig{
			Timeout:   time.Duration(cfg.TimeoutSeconds) * time.Second,
			RateLimit: 2,
			RateBurst: 4,
			UserAgent: cfg.UserAgent,
			Jar:       jar,
			Transport: transport,
		}),
	}, nil
}

func (s *DAVIDSession) call(ctx context.Context, operation string, args ...string) ([]xmlNode, error) {
	body := encodeSOAPRequest(operation, args...)
	headers := map[string]string{"SOAPAction": `"urn:` + operation + `"`}
	data, err := s.http.post(ctx, s.endpoint, "text/xml; charset=utf-8", body, headers)
	if err != nil {
		// Faults usually arrive with status 500; prefer the fault text.
		var fault *SOAPFault
		if _, ferr := decodeSOAPReturns(data); errors.As(ferr, &fault) {
			return nil, fmt.Errorf("%s: %w", operation, fault)
		}
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	returns, err := decodeSOAPReturns(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	return returns, nil
}

func scalarReturn(operation string, returns []xmlNode) (string, error) {
	if len(returns) == 0 {
		return "", fmt.Errorf("%s: missing return value", operation)
	}
	return strings.TrimSpace(returns[0].Content), nil
}

// Authenticate registers the session with a DAVID-registered e-mail address.
func (s *DAVIDSession) Authenticate(ctx context.Context, credential string) (bool, error) {
	returns, err := s.call(ctx, "authenticate", credential)
	if err != nil {
		return false, err
	}
	v, err := scalarReturn("authenticate", returns)
	if err != nil {
		return false, err
	}
	ok, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("authenticate: unexpected return %q", v)
	}
	return ok, nil
}

// AddList uploads a comma separated ID list and returns the acceptance signal.
func (s *DAVIDSession) AddList(ctx context.Context, ids, idType, listName string, listType int) (float64, error) {
	returns, err := s.call(ctx, "addList", ids, idType, listName, strconv.Itoa(listType))
	if err != nil {
		return 0, err
	}
	v, err := scalarReturn("addList", returns)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("addList: unexpected return %q", v)
	}
	return f, nil
}

// SetCategories selects the annotation categories of the chart report.
func (s *DAVIDSession) SetCategories(ctx context.Context, categories []string) error {
	_, err := s.call(ctx, "setCategories", strings.Join(categories, ","))
	return err
}

// GetChartReport fetches the functional annotation chart.
func (s *DAVIDSession) GetChartReport(ctx context.Context, threshold float64, count int) ([]RawRecord, error) {
	returns, err := s.call(ctx, "getChartReport", strconv.FormatFloat(threshold, 'g', -1, 64), strconv.Itoa(count))
	if err != nil {
		return nil, err
	}
	records := make([]RawRecord, 0, len(returns))
	for _, r := range returns {
		records = append(records, recordFromNode(r))
	}
	return records, nil
}
