package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/ogurasousui/employee-directory/internal/core/employee"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const createMutation = `mutation Create($input: EmployeeInput!) {
  createEmployee(input: $input) { id firstName lastName age department title employeeType dateOfJoining }
}`

const jan15Millis = "1705276800000"

type memRepo struct {
	mu    sync.Mutex
	items map[string]*employee.Employee
	order []string
	err   error
}

func newMemRepo() *memRepo {
	return &memRepo{items: map[string]*employee.Employee{}}
}

func (r *memRepo) FindAll(context.Context) ([]*employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := make([]*employee.Employee, 0, len(r.order))
	for _, id := range r.order {
		clone := *r.items[id]
		out = append(out, &clone)
	}
	return out, nil
}

func (r *memRepo) FindByID(_ context.Context, id string) (*employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	emp, ok := r.items[id]
	if !ok {
		return nil, employee.ErrEmployeeNotFound
	}
	clone := *emp
	return &clone, nil
}

func (r *memRepo) Insert(_ context.Context, e *employee.Employee) (*employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	clone := *e
	clone.ID = uuid.NewString()
	r.items[clone.ID] = &clone
	r.order = append(r.order, clone.ID)
	out := clone
	return &out, nil
}

func (r *memRepo) ReplaceByID(_ context.Context, id string, e *employee.Employee) (*employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	current, ok := r.items[id]
	if !ok {
		return nil, employee.ErrEmployeeNotFound
	}
	clone := *e
	clone.ID = id
	clone.CreatedAt = current.CreatedAt
	r.items[id] = &clone
	out := clone
	return &out, nil
}

func (r *memRepo) RemoveByID(_ context.Context, id string) (*employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	current, ok := r.items[id]
	if !ok {
		return nil, employee.ErrEmployeeNotFound
	}
	delete(r.items, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return current, nil
}

type gqlError struct {
	Message    string         `json:"message"`
	Path       []any          `json:"path"`
	Extensions map[string]any `json:"extensions"`
}

type gqlResult struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []gqlError                 `json:"errors"`
}

func newTestHandler(t *testing.T, repo employee.Repository) (http.Handler, *test.Hook) {
	t.Helper()

	schema, err := LoadSchema()
	require.NoError(t, err)

	logger, hook := test.NewNullLogger()
	entry := logrus.NewEntry(logger)
	svc := employee.NewService(repo, nil)
	return NewHandler(NewExecutableSchema(schema, svc, entry)), hook
}

func post(t *testing.T, h http.Handler, query string, vars map[string]any) (int, gqlResult) {
	t.Helper()

	body, err := json.Marshal(map[string]any{"query": query, "variables": vars})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec.Code, decodeResult(t, rec.Body.Bytes())
}

func decodeResult(t *testing.T, raw []byte) gqlResult {
	t.Helper()

	var res gqlResult
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	require.NoError(t, dec.Decode(&res), "body %s", raw)
	return res
}

func field(t *testing.T, res gqlResult, name string) map[string]any {
	t.Helper()

	raw, ok := res.Data[name]
	require.True(t, ok, "field %s missing in %v", name, res.Data)
	if string(raw) == "null" {
		return nil
	}
	var out map[string]any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	require.NoError(t, dec.Decode(&out))
	return out
}

func validVars() map[string]any {
	return map[string]any{"input": map[string]any{
		"firstName":     "Ana",
		"lastName":      "Lee",
		"age":           30,
		"department":    "IT",
		"title":         "Employee",
		"employeeType":  "Full-Time",
		"dateOfJoining": "2024-01-15",
	}}
}

func createOne(t *testing.T, h http.Handler) map[string]any {
	t.Helper()

	status, res := post(t, h, createMutation, validVars())
	require.Equal(t, http.StatusOK, status)
	require.Empty(t, res.Errors)
	return field(t, res, "createEmployee")
}

func TestCreateThenGet_ReturnsEpochMillis(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler(t, newMemRepo())
	created := createOne(t, h)

	assert.NotEmpty(t, created["id"])
	assert.Equal(t, "Ana", created["firstName"])
	assert.Equal(t, json.Number("30"), created["age"])
	assert.Equal(t, json.Number(jan15Millis), created["dateOfJoining"])

	_, res := post(t, h, `query Get($id: ID!) { employee(id: $id) { id firstName age dateOfJoining } }`,
		map[string]any{"id": created["id"]})
	require.Empty(t, res.Errors)

	got := field(t, res, "employee")
	assert.Equal(t, created["id"], got["id"])
	assert.Equal(t, json.Number(jan15Millis), got["dateOfJoining"])
}

func TestCreate_IntegerDateLiteral(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler(t, newMemRepo())
	_, res := post(t, h, `mutation {
  createEmployee(input: {firstName: "Bo", lastName: "Kim", age: 45, department: "HR", title: "VP", employeeType: "Contract", dateOfJoining: 1705276800000}) {
    dateOfJoining title
  }
}`, nil)
	require.Empty(t, res.Errors)

	created := field(t, res, "createEmployee")
	assert.Equal(t, json.Number(jan15Millis), created["dateOfJoining"])
	assert.Equal(t, "VP", created["title"])
}

func TestCreate_StringDateLiteralRejected(t *testing.T) {
	t.Parallel()

	repo := newMemRepo()
	h, _ := newTestHandler(t, repo)
	status, res := post(t, h, `mutation {
  createEmployee(input: {firstName: "Bo", lastName: "Kim", age: 45, department: "HR", title: "VP", employeeType: "Contract", dateOfJoining: "2024-01-15"}) { id }
}`, nil)

	assert.Equal(t, http.StatusOK, status)
	assert.Nil(t, res.Data)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, CodeBadUserInput, res.Errors[0].Extensions["code"])
	assert.Equal(t, "dateOfJoining", res.Errors[0].Extensions["field"])
	assert.Empty(t, repo.order)
}

func TestCreate_ConstraintViolations(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		field string
		value any
	}{
		{name: "age below minimum", field: "age", value: 19},
		{name: "age above maximum", field: "age", value: 71},
		{name: "department outside set", field: "department", value: "Sales"},
		{name: "title wrong case", field: "title", value: "manager"},
		{name: "blank first name", field: "firstName", value: "   "},
		{name: "unparseable date", field: "dateOfJoining", value: "not-a-date"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			repo := newMemRepo()
			h, _ := newTestHandler(t, repo)
			vars := validVars()
			vars["input"].(map[string]any)[tc.field] = tc.value

			_, res := post(t, h, createMutation, vars)
			assert.Nil(t, res.Data)
			require.NotEmpty(t, res.Errors)
			assert.Equal(t, CodeBadUserInput, res.Errors[0].Extensions["code"])
			assert.Equal(t, tc.field, res.Errors[0].Extensions["field"])
			assert.Empty(t, repo.order)
		})
	}
}

func TestCreate_AgeBoundariesAccepted(t *testing.T) {
	t.Parallel()

	for _, age := range []int{20, 70} {
		h, _ := newTestHandler(t, newMemRepo())
		vars := validVars()
		vars["input"].(map[string]any)["age"] = age

		_, res := post(t, h, createMutation, vars)
		require.Empty(t, res.Errors, "age %d", age)
	}
}

func TestGet_MissingReturnsNull(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler(t, newMemRepo())
	for _, id := range []string{uuid.NewString(), "not-a-uuid"} {
		status, res := post(t, h, `query Get($id: ID!) { employee(id: $id) { id } }`, map[string]any{"id": id})
		assert.Equal(t, http.StatusOK, status)
		assert.Empty(t, res.Errors)
		assert.Nil(t, field(t, res, "employee"))
	}
}

func TestUpdate_KeepsIdentity(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler(t, newMemRepo())
	created := createOne(t, h)

	vars := validVars()
	vars["id"] = created["id"]
	vars["input"].(map[string]any)["title"] = "Director"
	vars["input"].(map[string]any)["age"] = 41

	_, res := post(t, h, `mutation Update($id: ID!, $input: EmployeeInput!) {
  updateEmployee(id: $id, input: $input) { id title age }
}`, vars)
	require.Empty(t, res.Errors)

	updated := field(t, res, "updateEmployee")
	assert.Equal(t, created["id"], updated["id"])
	assert.Equal(t, "Director", updated["title"])
	assert.Equal(t, json.Number("41"), updated["age"])
}

func TestUpdate_MissingIsNotFound(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler(t, newMemRepo())
	vars := validVars()
	vars["id"] = uuid.NewString()

	_, res := post(t, h, `mutation Update($id: ID!, $input: EmployeeInput!) {
  updateEmployee(id: $id, input: $input) { id }
}`, vars)

	assert.Nil(t, res.Data)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, CodeNotFound, res.Errors[0].Extensions["code"])
	assert.Equal(t, []any{"updateEmployee"}, res.Errors[0].Path)
}

func TestDelete_Twice(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler(t, newMemRepo())
	created := createOne(t, h)
	const del = `mutation Delete($id: ID!) { deleteEmployee(id: $id) { id firstName } }`

	_, res := post(t, h, del, map[string]any{"id": created["id"]})
	require.Empty(t, res.Errors)
	removed := field(t, res, "deleteEmployee")
	assert.Equal(t, created["id"], removed["id"])
	assert.Equal(t, "Ana", removed["firstName"])

	_, res = post(t, h, del, map[string]any{"id": created["id"]})
	require.Len(t, res.Errors, 1)
	assert.Equal(t, CodeNotFound, res.Errors[0].Extensions["code"])
	assert.Nil(t, field(t, res, "deleteEmployee"))

	_, res = post(t, h, `{ employee(id: "`+created["id"].(string)+`") { id } }`, nil)
	assert.Nil(t, field(t, res, "employee"))
}

func TestEmployees_ListsAllInStoreOrder(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler(t, newMemRepo())
	_, res := post(t, h, `{ employees { id } }`, nil)
	require.Empty(t, res.Errors)
	assert.JSONEq(t, `[]`, string(res.Data["employees"]))

	first := createOne(t, h)
	second := createOne(t, h)

	_, res = post(t, h, `{ employees { id } }`, nil)
	require.Empty(t, res.Errors)

	var list []map[string]any
	require.NoError(t, json.Unmarshal(res.Data["employees"], &list))
	require.Len(t, list, 2)
	assert.Equal(t, first["id"], list[0]["id"])
	assert.Equal(t, second["id"], list[1]["id"])
}

func TestSelection_AliasesFragmentsAndTypename(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler(t, newMemRepo())
	createOne(t, h)

	rec := httptest.NewRecorder()
	body, err := json.Marshal(map[string]any{"query": `
query List($withAge: Boolean!) {
  __typename
  staff: employees {
    __typename
    ...Names
    ... on Employee { joined: dateOfJoining }
    age @include(if: $withAge)
  }
}
fragment Names on Employee { given: firstName lastName }`, "variables": map[string]any{"withAge": false}})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"data":{"__typename":"Query","staff":[{"__typename":"Employee","given":"Ana","lastName":"Lee","joined":1705276800000}]}}`,
		rec.Body.String())
}

func TestPersistenceFailureIsReported(t *testing.T) {
	t.Parallel()

	repo := newMemRepo()
	repo.err = errors.New("connection refused")
	h, hook := newTestHandler(t, repo)

	_, res := post(t, h, `{ employees { id } }`, nil)
	assert.Nil(t, res.Data)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, CodePersistenceError, res.Errors[0].Extensions["code"])
	assert.NotContains(t, res.Errors[0].Message, "connection refused")

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestDocumentErrors(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler(t, newMemRepo())

	status, res := post(t, h, `{ employees { id `, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	require.NotEmpty(t, res.Errors)
	assert.Equal(t, CodeParseFailed, res.Errors[0].Extensions["code"])

	status, res = post(t, h, `{ employees { salary } }`, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	require.NotEmpty(t, res.Errors)
	assert.Equal(t, CodeValidationFailed, res.Errors[0].Extensions["code"])

	status, res = post(t, h, createMutation, map[string]any{})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	require.NotEmpty(t, res.Errors)
	assert.Equal(t, CodeValidationFailed, res.Errors[0].Extensions["code"])
}

func TestGetRequests(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler(t, newMemRepo())

	q := url.Values{"query": {`{ employees { id } }`}}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/graphql?"+q.Encode(), nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"employees":[]}}`, rec.Body.String())

	q = url.Values{"query": {`mutation { deleteEmployee(id: "x") { id } }`}}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/graphql?"+q.Encode(), nil))
	assert.Equal(t, http.StatusNotAcceptable, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/graphql", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewBufferString(`{"query":"{ employees { id } }"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code, "POST without a JSON content type")
}

func TestCreate_OffsetDateNormalizedToUTCDay(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler(t, newMemRepo())
	vars := validVars()
	vars["input"].(map[string]any)["dateOfJoining"] = "2024-01-15T23:30:00-05:00"

	_, res := post(t, h, createMutation, vars)
	require.Empty(t, res.Errors)

	want := time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC).UnixMilli()
	created := field(t, res, "createEmployee")
	assert.Equal(t, json.Number(jsonInt(want)), created["dateOfJoining"])
}

func jsonInt(v int64) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func TestSelection_RepeatedResponseKeyMergesSubselections(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler(t, newMemRepo())
	created := createOne(t, h)

	_, res := post(t, h, `{ employees { id } employees { firstName } }`, nil)
	require.Empty(t, res.Errors)
	assert.JSONEq(t, `[{"id":"`+created["id"].(string)+`","firstName":"Ana"}]`, string(res.Data["employees"]))

	_, res = post(t, h, `query Get($id: ID!) {
  person: employee(id: $id) { id ...Names }
  person: employee(id: $id) { age }
}
fragment Names on Employee { firstName lastName }`, map[string]any{"id": created["id"]})
	require.Empty(t, res.Errors)
	person := field(t, res, "person")
	assert.Equal(t, map[string]any{
		"id":        created["id"],
		"firstName": "Ana",
		"lastName":  "Lee",
		"age":       json.Number("30"),
	}, person)
}

func TestSelection_DirectivesFromVariables(t *testing.T) {
	t.Parallel()

	const query = `query List($skipName: Boolean!, $withAge: Boolean!) {
  employees {
    id
    firstName @skip(if: $skipName)
    age @include(if: $withAge)
  }
}`

	cases := []struct {
		name     string
		skipName bool
		withAge  bool
		want     []string
	}{
		{name: "skip name without age", skipName: true, withAge: false, want: []string{"id"}},
		{name: "keep name without age", skipName: false, withAge: false, want: []string{"id", "firstName"}},
		{name: "skip name with age", skipName: true, withAge: true, want: []string{"id", "age"}},
		{name: "keep name with age", skipName: false, withAge: true, want: []string{"id", "firstName", "age"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			h, _ := newTestHandler(t, newMemRepo())
			createOne(t, h)

			_, res := post(t, h, query, map[string]any{"skipName": tc.skipName, "withAge": tc.withAge})
			require.Empty(t, res.Errors)

			var list []map[string]any
			require.NoError(t, json.Unmarshal(res.Data["employees"], &list))
			require.Len(t, list, 1)

			keys := make([]string, 0, len(list[0]))
			for k := range list[0] {
				keys = append(keys, k)
			}
			assert.ElementsMatch(t, tc.want, keys)
		})
	}
}

func TestQuery_RootFieldsResolvedTogether(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler(t, newMemRepo())
	created := createOne(t, h)

	_, res := post(t, h, `query Both($id: ID!, $missing: ID!) {
  all: employees { id }
  one: employee(id: $id) { firstName }
  none: employee(id: $missing) { id }
}`, map[string]any{"id": created["id"], "missing": uuid.NewString()})
	require.Empty(t, res.Errors)

	assert.JSONEq(t, `[{"id":"`+created["id"].(string)+`"}]`, string(res.Data["all"]))
	assert.Equal(t, map[string]any{"firstName": "Ana"}, field(t, res, "one"))
	assert.Nil(t, field(t, res, "none"))
}

func TestQuery_IntrospectionDisabled(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler(t, newMemRepo())
	status, res := post(t, h, `{ __schema { queryType { name } } }`, nil)

	assert.Equal(t, http.StatusOK, status)
	assert.Nil(t, res.Data)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "introspection disabled", res.Errors[0].Message)
}

func TestDocumentErrors_EmptyQuery(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler(t, newMemRepo())
	status, res := post(t, h, ``, nil)

	assert.Equal(t, http.StatusUnprocessableEntity, status)
	require.NotEmpty(t, res.Errors)
	assert.Equal(t, CodeValidationFailed, res.Errors[0].Extensions["code"])
}

func TestLoadSchema_RequiresDateScalar(t *testing.T) {
	t.Parallel()

	schema, err := LoadSchema()
	require.NoError(t, err)
	assert.NotNil(t, schema.Types["Date"])

	_, err = parseSchema(`type Query { ping: String }`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scalar Date")
}
