package repository

import (
	"context"
	"errors"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/ThalliMega/MiniTikTok-User-Http/internal/common/db"
	"github.com/ThalliMega/MiniTikTok-User-Http/internal/common/pool"
	userdomain "github.com/ThalliMega/MiniTikTok-User-Http/internal/user/domain"
)

var ErrNodeExists = errors.New("graph node already exists")

const constraintValidationFailed = "Neo.ClientError.Schema.ConstraintValidationFailed"

const createUserCypher = `CREATE (:User {id: $user_id, username: $username, avatar: $avatar, background_image: $background_image, signature: $signature})`

type Repository interface {
	CreateUser(ctx context.Context, session pool.GraphSession, node userdomain.GraphUserNode) error
}

type BoltRepository struct{}

func NewBoltRepository() *BoltRepository {
	return &BoltRepository{}
}

// CreateUser consumes the result before returning so the session holds no
// pending records.
func (r *BoltRepository) CreateUser(ctx context.Context, session pool.GraphSession, node userdomain.GraphUserNode) error {
	start := time.Now()
	result, err := session.Run(ctx, createUserCypher, map[string]any{
		"user_id":          node.ID,
		"username":         node.Username,
		"avatar":           node.Avatar,
		"background_image": node.BackgroundImage,
		"signature":        node.Signature,
	})
	if err == nil {
		_, err = result.Consume(ctx)
	}
	if err != nil {
		if IsConstraintViolation(err) {
			db.ObserveQuery(db.StoreGraph, "create_user", start, nil)
			return ErrNodeExists
		}
		return db.WrapQueryError(db.StoreGraph, "create_user", start, err)
	}
	db.ObserveQuery(db.StoreGraph, "create_user", start, nil)
	return nil
}

func IsConstraintViolation(err error) bool {
	var graphErr *neo4j.Neo4jError
	return errors.As(err, &graphErr) && graphErr.Code == constraintValidationFailed
}
