package domain

type CountKind int

const (
	CountFollow CountKind = iota + 1
	CountFollower
	CountFavorite
	CountTotalFavorited
	CountWork
)

var countKindNames = map[CountKind]string{
	CountFollow:         "follow_count",
	CountFollower:       "follower_count",
	CountFavorite:       "favorite_count",
	CountTotalFavorited: "total_favorited",
	CountWork:           "work_count",
}

// CountKinds lists every counter a profile carries.
var CountKinds = []CountKind{CountFollow, CountFollower, CountFavorite, CountTotalFavorited, CountWork}

func (k CountKind) String() string {
	if name, ok := countKindNames[k]; ok {
		return name
	}
	return "unknown"
}

type Attributes struct {
	ID              int64
	Name            string
	Avatar          string
	BackgroundImage string
	Signature       string
}

// View is assembled per request and never stored.
type View struct {
	Attributes
	FollowCount    int64
	FollowerCount  int64
	FavoriteCount  int64
	TotalFavorited int64
	WorkCount      int64
	IsFollow       bool
}

func (v *View) SetCount(kind CountKind, n int64) {
	switch kind {
	case CountFollow:
		v.FollowCount = n
	case CountFollower:
		v.FollowerCount = n
	case CountFavorite:
		v.FavoriteCount = n
	case CountTotalFavorited:
		v.TotalFavorited = n
	case CountWork:
		v.WorkCount = n
	}
}
