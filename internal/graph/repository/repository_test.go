package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	userdomain "github.com/ThalliMega/MiniTikTok-User-Http/internal/user/domain"
)

type fakeResult struct {
	neo4j.ResultWithContext
	consumeErr error
	consumed   bool
}

func (r *fakeResult) Consume(context.Context) (neo4j.ResultSummary, error) {
	r.consumed = true
	return nil, r.consumeErr
}

type fakeSession struct {
	result *fakeResult
	runErr error
	cypher string
	params map[string]any
}

func (s *fakeSession) Run(ctx context.Context, cypher string, params map[string]any, _ ...func(*neo4j.TransactionConfig)) (neo4j.ResultWithContext, error) {
	s.cypher = cypher
	s.params = params
	if s.runErr != nil {
		return nil, s.runErr
	}
	return s.result, nil
}

func TestBoltRepository_CreateUserConsumesResult(t *testing.T) {
	session := &fakeSession{result: &fakeResult{}}

	err := NewBoltRepository().CreateUser(context.Background(), session, userdomain.GraphUserNode{ID: 5, Username: "alice"})

	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if !session.result.consumed {
		t.Error("result must be consumed")
	}
	if session.params["user_id"] != int64(5) || session.params["username"] != "alice" {
		t.Errorf("unexpected params %v", session.params)
	}
}

func TestBoltRepository_ConstraintViolation(t *testing.T) {
	violation := &neo4j.Neo4jError{Code: constraintValidationFailed, Msg: "already exists with label `User`"}

	for name, session := range map[string]*fakeSession{
		"on run":     {runErr: violation},
		"on consume": {result: &fakeResult{consumeErr: violation}},
	} {
		err := NewBoltRepository().CreateUser(context.Background(), session, userdomain.GraphUserNode{ID: 5, Username: "alice"})
		if !errors.Is(err, ErrNodeExists) {
			t.Errorf("%s: expected ErrNodeExists, got %v", name, err)
		}
	}
}

func TestBoltRepository_OtherFailure(t *testing.T) {
	cause := &neo4j.Neo4jError{Code: "Neo.TransientError.General.DatabaseUnavailable"}
	session := &fakeSession{runErr: cause}

	err := NewBoltRepository().CreateUser(context.Background(), session, userdomain.GraphUserNode{ID: 5})

	if errors.Is(err, ErrNodeExists) {
		t.Fatal("transient error must not be reported as a conflict")
	}
	if !errors.As(err, new(*neo4j.Neo4jError)) {
		t.Errorf("expected wrapped Neo4jError, got %v", err)
	}
}
