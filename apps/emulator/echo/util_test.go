package echoapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/campuscopilot/apps/emulator/echo"
	"github.com/trezcool/campuscopilot/core"
	dummydb "github.com/trezcool/campuscopilot/storage/database/dummy"
	remotesvc "github.com/trezcool/campuscopilot/services/remote"
	testutil "github.com/trezcool/campuscopilot/tests"
)

var errMissingToken = remotesvc.ErrorResponse{Error: "missing or malformed jwt", Kind: "auth"}

type testServer struct {
	*echoapi.Server
	docs   core.DocumentStore
	logger *testutil.Logger
}

func setup(t *testing.T) testServer {
	db, err := dummydb.Open()
	require.NoError(t, err)
	docs := dummydb.NewDocumentStore(db)
	logger := testutil.NewLogger()
	validate, translator := testutil.NewValidator()

	conf := &core.Config{
		TestMode:  true,
		AppName:   "Campus Copilot",
		SecretKey: "test-secret",
		Server:    core.ServerConfig{JWTExpirationDelta: time.Hour},
	}
	srv := echoapi.NewServer(echoapi.ServerDeps{
		Conf:           conf,
		Logger:         logger,
		Docs:           docs,
		Identity:       dummydb.NewIdentityProvider(db),
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
	})
	return testServer{Server: srv, docs: docs, logger: logger}
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, httptest.NewRecorder()
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

// signUp registers an account and returns its uid and token.
func signUp(t *testing.T, app http.Handler, email, pwd string) remotesvc.AuthResponse {
	t.Helper()
	req, rec := newRequest(http.MethodPost, "/v1/identity/signup", marshallObj(t, remotesvc.Credentials{Email: email, Password: pwd}))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var auth remotesvc.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &auth))
	return auth
}
