package mapper

import (
	"github.com/ThalliMega/MiniTikTok-User-Http/internal/common/dto"
	profiledomain "github.com/ThalliMega/MiniTikTok-User-Http/internal/profile/domain"
)

func ProfileToDTO(view profiledomain.View) dto.User {
	return dto.User{
		ID:              view.ID,
		Name:            view.Name,
		FollowCount:     view.FollowCount,
		FollowerCount:   view.FollowerCount,
		IsFollow:        view.IsFollow,
		Avatar:          view.Avatar,
		BackgroundImage: view.BackgroundImage,
		Signature:       view.Signature,
		TotalFavorited:  view.TotalFavorited,
		WorkCount:       view.WorkCount,
		FavoriteCount:   view.FavoriteCount,
	}
}
