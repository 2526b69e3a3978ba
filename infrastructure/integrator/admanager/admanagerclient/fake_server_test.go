package admanagerclient

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/require"

	admanagerdomain "github.com/vfg2006/admanager-extractor/infrastructure/integrator/admanager/domain"
	"github.com/vfg2006/admanager-extractor/internal/domain"
)

const (
	testVersion     = "v202508"
	testAccessToken = "access-token-123"
	testEmail       = "extractor@project.iam.gserviceaccount.com"
)

// soapRequest decodifica as operações recebidas pelo servidor falso
type soapRequest struct {
	Header struct {
		RequestHeader struct {
			Xmlns           string `xml:"xmlns,attr"`
			NetworkCode     string `xml:"networkCode"`
			ApplicationName string `xml:"applicationName"`
		} `xml:"RequestHeader"`
	} `xml:"Header"`
	Body struct {
		Run      *admanagerdomain.RunReportJob                    `xml:"runReportJob"`
		Status   *admanagerdomain.GetReportJobStatus              `xml:"getReportJobStatus"`
		Download *admanagerdomain.GetReportDownloadURLWithOptions `xml:"getReportDownloadUrlWithOptions"`
	} `xml:"Body"`
}

// fakeAdManager simula o endpoint de token, o ReportService e a URL de download
type fakeAdManager struct {
	t      *testing.T
	key    *rsa.PrivateKey
	server *httptest.Server

	mu            sync.Mutex
	tokenStatus   int
	tokenRequests int
	jobID         int64
	statuses      []string
	faultOn       map[string][]string
	httpStatusOn  map[string]int
	report        string
	downloadCode  int
	calls         map[string]int
	rawRequests   []string
	requests      []soapRequest
	cacheHeaders  []string
	authorization []string
}

func newFakeAdManager(t *testing.T) *fakeAdManager {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	f := &fakeAdManager{
		t:            t,
		key:          key,
		tokenStatus:  http.StatusOK,
		jobID:        123,
		statuses:     []string{"COMPLETED"},
		faultOn:      map[string][]string{},
		httpStatusOn: map[string]int{},
		report:       "Dimension.DATE,Column.AD_SERVER_IMPRESSIONS\n2024-01-01,10\n",
		downloadCode: http.StatusOK,
		calls:        map[string]int{},
	}

	router := httprouter.New()
	router.POST("/token", f.handleToken)
	router.POST("/apis/ads/publisher/:version/ReportService", f.handleReportService)
	router.GET("/download/:id", f.handleDownload)

	f.server = httptest.NewServer(router)
	t.Cleanup(f.server.Close)

	return f
}

func (f *fakeAdManager) privateKeyPEM() string {
	return string(pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(f.key),
	}))
}

func (f *fakeAdManager) credentials() domain.Credentials {
	return domain.Credentials{
		ClientEmail: testEmail,
		PrivateKey:  f.privateKeyPEM(),
		TokenURI:    f.server.URL + "/token",
		NetworkCode: "987654",
	}
}

func (f *fakeAdManager) privateKeyPKCS8PEM(t *testing.T) string {
	der, err := x509.MarshalPKCS8PrivateKey(f.key)
	require.NoError(t, err)
	return string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}))
}

func (f *fakeAdManager) tokenCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tokenRequests
}

func (f *fakeAdManager) callCount(operation string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[operation]
}

func (f *fakeAdManager) newClient(t *testing.T) *AdManagerClient {
	t.Helper()

	session, err := NewSession(context.Background(), f.credentials(), SessionOptions{HTTPTimeout: 5 * time.Second})
	require.NoError(t, err)

	client := newClient(session, Options{
		BaseURL:         f.server.URL,
		APIVersion:      testVersion,
		ApplicationName: "extractor-test",
		PollInterval:    time.Second,
	})
	client.after = func(time.Duration) <-chan time.Time {
		ch := make(chan time.Time, 1)
		ch <- time.Now()
		return ch
	}
	return client
}

func (f *fakeAdManager) handleToken(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokenRequests++

	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if r.PostForm.Get("grant_type") != jwtBearerGrant {
		http.Error(w, `{"error":"unsupported_grant_type"}`, http.StatusBadRequest)
		return
	}

	claims := &assertionClaims{}
	_, err := jwt.ParseWithClaims(r.PostForm.Get("assertion"), claims,
		func(token *jwt.Token) (any, error) { return &f.key.PublicKey, nil },
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithAudience(f.server.URL+"/token"),
		jwt.WithIssuer(testEmail),
	)
	if err != nil || claims.Scope != AdManagerScope {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
		return
	}

	if f.tokenStatus != http.StatusOK {
		w.WriteHeader(f.tokenStatus)
		_, _ = io.WriteString(w, `{"error":"invalid_client"}`)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"access_token":%q,"token_type":"Bearer","expires_in":3600}`, testAccessToken)
}

func (f *fakeAdManager) handleReportService(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	f.mu.Lock()
	defer f.mu.Unlock()

	raw, _ := io.ReadAll(r.Body)
	f.rawRequests = append(f.rawRequests, string(raw))
	f.cacheHeaders = append(f.cacheHeaders, r.Header.Get("Cache-Control"))
	f.authorization = append(f.authorization, r.Header.Get("Authorization"))

	var req soapRequest
	if err := xml.Unmarshal(raw, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.requests = append(f.requests, req)

	operation := ""
	switch {
	case req.Body.Run != nil:
		operation = "runReportJob"
	case req.Body.Status != nil:
		operation = "getReportJobStatus"
	case req.Body.Download != nil:
		operation = "getReportDownloadUrlWithOptions"
	}
	f.calls[operation]++

	if status, ok := f.httpStatusOn[operation]; ok {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, "<html>gateway error</html>")
		return
	}

	w.Header().Set("Content-Type", "text/xml; charset=utf-8")

	if codes, ok := f.faultOn[operation]; ok {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, faultXML(ps.ByName("version"), codes...))
		return
	}

	ns := admanagerdomain.Namespace(ps.ByName("version"))
	var content string
	switch operation {
	case "runReportJob":
		content = fmt.Sprintf(`<runReportJobResponse xmlns=%q><rval><id>%d</id></rval></runReportJobResponse>`, ns, f.jobID)
	case "getReportJobStatus":
		status := f.statuses[0]
		if len(f.statuses) > 1 {
			f.statuses = f.statuses[1:]
		}
		content = fmt.Sprintf(`<getReportJobStatusResponse xmlns=%q><rval>%s</rval></getReportJobStatusResponse>`, ns, status)
	case "getReportDownloadUrlWithOptions":
		content = fmt.Sprintf(`<getReportDownloadUrlWithOptionsResponse xmlns=%q><rval>%s/download/%d?token=signed&amp;x=1</rval></getReportDownloadUrlWithOptionsResponse>`,
			ns, f.server.URL, req.Body.Download.ReportJobID)
	}

	_, _ = io.WriteString(w, envelopeXML(ns, content))
}

func (f *fakeAdManager) handleDownload(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["download"]++

	if f.downloadCode != http.StatusOK {
		w.WriteHeader(f.downloadCode)
		return
	}
	if r.URL.Query().Get("token") != "signed" {
		w.WriteHeader(http.StatusForbidden)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	_, _ = io.WriteString(w, f.report)
}

func envelopeXML(ns, content string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>` +
		`<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">` +
		`<soap:Header><ResponseHeader xmlns="` + ns + `"><requestId>abc</requestId><responseTime>12</responseTime></ResponseHeader></soap:Header>` +
		`<soap:Body>` + content + `</soap:Body></soap:Envelope>`
}

func faultXML(version string, codes ...string) string {
	var errs strings.Builder
	for _, code := range codes {
		reason := code[strings.Index(code, ".")+1:]
		fmt.Fprintf(&errs, `<errors><fieldPath></fieldPath><trigger></trigger><errorString>%s</errorString><reason>%s</reason></errors>`, code, reason)
	}

	return `<?xml version="1.0" encoding="UTF-8"?>` +
		`<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/"><soap:Body><soap:Fault>` +
		`<faultcode>soap:Server</faultcode>` +
		`<faultstring>[` + strings.Join(codes, ", ") + `]</faultstring>` +
		`<detail><ApiExceptionFault xmlns="` + admanagerdomain.Namespace(version) + `">` +
		`<message>[` + strings.Join(codes, ", ") + `]</message>` + errs.String() +
		`</ApiExceptionFault></detail></soap:Fault></soap:Body></soap:Envelope>`
}
