/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/tomoncle/dao/types"
)

type note struct {
	ID   string
	Data string
}

func (n *note) GetIdentifier() string   { return n.ID }
func (n *note) SetIdentifier(id string) { n.ID = id }

// recordingSession remembers the calls and criteria the repository issues.
type recordingSession struct {
	calls    []string
	criteria *types.Criteria
	count    int64
	countOK  bool
	countErr error
	nextID   string
	err      error
}

func (s *recordingSession) Load(ctx context.Context, id string) (*note, error) {
	s.calls = append(s.calls, "Load")
	return &note{ID: id}, s.err
}

func (s *recordingSession) LoadAll(ctx context.Context) ([]*note, error) {
	s.calls = append(s.calls, "LoadAll")
	return nil, s.err
}

func (s *recordingSession) Find(ctx context.Context, criteria *types.Criteria) ([]*note, error) {
	s.calls = append(s.calls, "Find")
	s.criteria = criteria
	return nil, s.err
}

func (s *recordingSession) Count(ctx context.Context, criteria *types.Criteria) (int64, bool, error) {
	s.calls = append(s.calls, "Count")
	s.criteria = criteria
	return s.count, s.countOK, s.countErr
}

func (s *recordingSession) Insert(ctx context.Context, entity *note) error {
	s.calls = append(s.calls, "Insert")
	if entity.ID == "" {
		entity.ID = s.nextID
	}
	return s.err
}

func (s *recordingSession) SaveOrUpdate(ctx context.Context, entity *note) error {
	s.calls = append(s.calls, "SaveOrUpdate")
	entity.ID = "changed by backend"
	return s.err
}

func (s *recordingSession) Delete(ctx context.Context, entity *note) error {
	s.calls = append(s.calls, "Delete")
	return s.err
}

func TestSaveWithoutIdentifierInserts(t *testing.T) {
	session := &recordingSession{nextID: "backend-1"}
	repo := NewRepository[note, string](session)

	id, err := repo.Save(context.Background(), &note{Data: "x"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if id != "backend-1" {
		t.Errorf("id = %q, want backend-assigned id", id)
	}
	if len(session.calls) != 1 || session.calls[0] != "Insert" {
		t.Errorf("calls = %v, want [Insert]", session.calls)
	}
}

func TestSaveFailsWhenInsertLeavesIdentifierAbsent(t *testing.T) {
	session := &recordingSession{}
	repo := NewRepository[note, string](session)

	id, err := repo.Save(context.Background(), &note{Data: "x"})
	if !errors.Is(err, ErrIdentifierRequired) || id != "" {
		t.Errorf("save = %q, %v; want ErrIdentifierRequired", id, err)
	}
}

func TestSaveUsesIdentifierGenerator(t *testing.T) {
	session := &recordingSession{nextID: "backend-1"}
	repo := NewRepository[note, string](session, WithIdentifierGenerator[string](func() string { return "generated" }))

	n := &note{}
	id, err := repo.Save(context.Background(), n)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if id != "generated" || n.ID != "generated" {
		t.Errorf("id = %q, entity id = %q, want generated", id, n.ID)
	}
}

func TestSaveWithIdentifierUpsertsAndKeepsIdentifier(t *testing.T) {
	session := &recordingSession{}
	repo := NewRepository[note, string](session)

	id, err := repo.Save(context.Background(), &note{ID: "note 1"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if len(session.calls) != 1 || session.calls[0] != "SaveOrUpdate" {
		t.Fatalf("calls = %v, want [SaveOrUpdate]", session.calls)
	}
	// The identifier is captured before the backend call, not re-read.
	if id != "note 1" {
		t.Errorf("id = %q, want the identifier passed in", id)
	}
}

func TestSavePropagatesBackendError(t *testing.T) {
	boom := errors.New("constraint violation")
	repo := NewRepository[note, string](&recordingSession{err: boom})

	if _, err := repo.Save(context.Background(), &note{}); !errors.Is(err, boom) {
		t.Errorf("insert error = %v, want %v", err, boom)
	}
	if _, err := repo.Save(context.Background(), &note{ID: "n"}); !errors.Is(err, boom) {
		t.Errorf("upsert error = %v, want %v", err, boom)
	}
}

func TestNilEntityIsRejected(t *testing.T) {
	session := &recordingSession{}
	repo := NewRepository[note, string](session)

	if _, err := repo.Save(context.Background(), nil); err == nil {
		t.Errorf("save nil should fail")
	}
	if err := repo.Delete(context.Background(), nil); err == nil {
		t.Errorf("delete nil should fail")
	}
	if len(session.calls) != 0 {
		t.Errorf("nil entity reached the session: %v", session.calls)
	}
}

func TestCountSentinel(t *testing.T) {
	tests := []struct {
		name    string
		session *recordingSession
		want    int
		wantErr error
	}{
		{name: "zero is a valid count", session: &recordingSession{count: 0, countOK: true}, want: 0},
		{name: "numeric row", session: &recordingSession{count: 12, countOK: true}, want: 12},
		{name: "no numeric row", session: &recordingSession{countOK: false}, want: -1, wantErr: ErrIndeterminateCount},
		{name: "backend error", session: &recordingSession{countErr: errors.New("down")}, want: -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewRepository[note, string](tt.session)
			got, err := repo.Count(context.Background())
			if got != tt.want {
				t.Errorf("count = %d, want %d", got, tt.want)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.session.countErr != nil && !errors.Is(err, tt.session.countErr) {
				t.Errorf("err = %v, want backend error unchanged", err)
			}
		})
	}
}

func TestExampleQueriesUseDistinctPredicateKinds(t *testing.T) {
	ctx := context.Background()
	session := &recordingSession{countOK: true}
	repo := NewRepository[note, string](session)

	names := []string{"data", "id"}
	values := []interface{}{"X"}

	if _, err := repo.GetByExample(ctx, names, values); err != nil {
		t.Fatalf("get by example: %v", err)
	}
	if len(session.criteria.Predicates) != 1 || session.criteria.Predicates[0].Kind != types.Equality {
		t.Errorf("get by example predicates = %+v", session.criteria.Predicates)
	}

	if _, err := repo.CountByExample(ctx, names, values); err != nil {
		t.Fatalf("count by example: %v", err)
	}
	if len(session.criteria.Predicates) != 1 || session.criteria.Predicates[0].Kind != types.CaseInsensitiveMatch {
		t.Errorf("count by example predicates = %+v", session.criteria.Predicates)
	}

	if _, err := repo.GetByExamplePage(ctx, names, values, 5, 5); err != nil {
		t.Fatalf("get by example page: %v", err)
	}
	c := session.criteria
	if len(c.Predicates) != 1 || c.GetOffset() != 5 || c.GetLimit() != 5 {
		t.Errorf("paged criteria = %+v offset=%d limit=%d", c.Predicates, c.GetOffset(), c.GetLimit())
	}

	if _, err := repo.GetPage(ctx, 0, 3); err != nil {
		t.Fatalf("get page: %v", err)
	}
	if len(session.criteria.Predicates) != 0 || session.criteria.GetLimit() != 3 {
		t.Errorf("page criteria = %+v limit=%d", session.criteria.Predicates, session.criteria.GetLimit())
	}
}
