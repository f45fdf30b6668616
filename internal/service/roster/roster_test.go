package roster

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/go-jose/go-jose/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docs-evaluator/internal/domain"
	"docs-evaluator/internal/testutil"
)

func rosterSource() *testutil.MockRowSource {
	return &testutil.MockRowSource{Ranges: map[string][][]string{
		DefaultRange: {
			{"CRUZ, PATRICIA ANNE", "A", "T1"},
			{"short row"},
			{"Lee, Benjamin", "B", "T4"},
		},
	}}
}

func TestVerify(t *testing.T) {
	svc := NewService(rosterSource(), "", []string{" Prof@School.edu ", ""}, nil, testutil.DiscardLogger())

	tests := []struct {
		name     string
		display  string
		email    string
		wantRole domain.Role
		wantName string
	}{
		{"teacher by email", "Prof X", "prof@school.edu", domain.RoleTeacher, "Prof X"},
		{"student all tokens", "Patricia Cruz", "pat@school.edu", domain.RoleStudent, "CRUZ, PATRICIA ANNE"},
		{"student lowercase", "benjamin lee", "", domain.RoleStudent, "Lee, Benjamin"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Verify(context.Background(), tt.display, tt.email)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRole, got.Role)
			assert.Equal(t, tt.wantName, got.StudentName)
		})
	}
}

func TestVerify_Rejected(t *testing.T) {
	svc := NewService(rosterSource(), "", nil, nil, testutil.DiscardLogger())

	_, err := svc.Verify(context.Background(), "Patricia Santos", "")
	var denied *domain.AccessDeniedError
	assert.ErrorAs(t, err, &denied)

	_, err = svc.Verify(context.Background(), "  ", "")
	var validation *domain.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestVerify_TeacherSkipsRoster(t *testing.T) {
	src := &testutil.MockRowSource{ReadRangeFn: func(context.Context, string) ([][]string, error) {
		panic("roster must not be read for teachers")
	}}
	svc := NewService(src, "", []string{"prof@school.edu"}, nil, nil)

	got, err := svc.Verify(context.Background(), "Prof", "PROF@school.edu")
	require.NoError(t, err)
	assert.Equal(t, "N/A", got.Section)
}

func TestVerify_RosterUnavailable(t *testing.T) {
	src := &testutil.MockRowSource{ReadRangeFn: func(context.Context, string) ([][]string, error) {
		return nil, errors.New("timeout")
	}}
	svc := NewService(src, "", nil, nil, nil)

	_, err := svc.Verify(context.Background(), "Pat", "")
	var srcErr *domain.SourceUnavailableError
	assert.ErrorAs(t, err, &srcErr)
}

const (
	testIssuer   = "https://accounts.example.test"
	testClientID = "client-123"
)

func signToken(t *testing.T, key *rsa.PrivateKey, claims map[string]any) string {
	t.Helper()
	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.RS256, Key: key}, nil)
	require.NoError(t, err)
	payload, err := json.Marshal(claims)
	require.NoError(t, err)
	obj, err := signer.Sign(payload)
	require.NoError(t, err)
	raw, err := obj.CompactSerialize()
	require.NoError(t, err)
	return raw
}

func TestVerifyToken(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	verifier := NewOIDCVerifierFromKeySet(testIssuer, testClientID,
		&oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{key.Public()}})
	svc := NewService(rosterSource(), "", nil, verifier, testutil.DiscardLogger())

	now := time.Now()
	base := map[string]any{
		"iss":            testIssuer,
		"aud":            testClientID,
		"sub":            "1234",
		"iat":            now.Unix(),
		"exp":            now.Add(time.Hour).Unix(),
		"email":          "ben@school.edu",
		"email_verified": true,
		"name":           "Benjamin Lee",
	}

	got, err := svc.VerifyToken(context.Background(), signToken(t, key, base))
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStudent, got.Role)
	assert.Equal(t, "T4", got.GroupCode)

	wrongAud := map[string]any{}
	for k, v := range base {
		wrongAud[k] = v
	}
	wrongAud["aud"] = "someone-else"
	_, err = svc.VerifyToken(context.Background(), signToken(t, key, wrongAud))
	var denied *domain.AccessDeniedError
	assert.ErrorAs(t, err, &denied)
}

func TestVerifyToken_NotConfigured(t *testing.T) {
	svc := NewService(rosterSource(), "", nil, nil, nil)
	_, err := svc.VerifyToken(context.Background(), "x.y.z")
	var validation *domain.ValidationError
	assert.ErrorAs(t, err, &validation)
}
