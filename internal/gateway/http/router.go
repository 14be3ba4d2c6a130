package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	authdomain "github.com/ThalliMega/MiniTikTok-User-Http/internal/auth/domain"
	"github.com/ThalliMega/MiniTikTok-User-Http/internal/common/constants"
	"github.com/ThalliMega/MiniTikTok-User-Http/internal/common/dto"
	commonerrors "github.com/ThalliMega/MiniTikTok-User-Http/internal/common/errors"
	commonhttp "github.com/ThalliMega/MiniTikTok-User-Http/internal/common/http"
	"github.com/ThalliMega/MiniTikTok-User-Http/internal/common/logger"
	"github.com/ThalliMega/MiniTikTok-User-Http/internal/common/mapper"
	profiledomain "github.com/ThalliMega/MiniTikTok-User-Http/internal/profile/domain"
	regservice "github.com/ThalliMega/MiniTikTok-User-Http/internal/registration/service"
)

type Registrar interface {
	Register(ctx context.Context, in regservice.Input) (authdomain.Session, error)
}

type TokenIssuer interface {
	IssueToken(ctx context.Context, username, password string) (authdomain.Session, error)
}

type ProfileReader interface {
	Caller(ctx context.Context, token string) (int64, error)
	GetProfile(ctx context.Context, token string, target int64) (profiledomain.View, error)
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type infoRequest struct {
	UserID json.Number `json:"user_id"`
	Token  string      `json:"token"`
}

type sessionResponse struct {
	commonhttp.StatusResponse
	UserID int64  `json:"user_id"`
	Token  string `json:"token"`
}

type userResponse struct {
	commonhttp.StatusResponse
	User *dto.User `json:"user"`
}

type Handler struct {
	registrar      Registrar
	tokens         TokenIssuer
	profiles       ProfileReader
	errHandler     *commonhttp.ErrorHandler
	log            *logger.Logger
	requestTimeout time.Duration
}

func NewHandler(registrar Registrar, tokens TokenIssuer, profiles ProfileReader, log *logger.Logger) http.Handler {
	h := &Handler{
		registrar:      registrar,
		tokens:         tokens,
		profiles:       profiles,
		errHandler:     commonhttp.NewErrorHandler(log),
		log:            log,
		requestTimeout: constants.RequestTimeout,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/health_check", commonhttp.HealthHandler(log))
	mux.HandleFunc(commonhttp.RegisterPath, commonhttp.RequireMethod(http.MethodPost)(h.register))
	mux.HandleFunc(commonhttp.LoginPath, commonhttp.RequireMethod(http.MethodPost)(h.login))
	mux.HandleFunc("/douyin/user/{$}", commonhttp.RequireMethod(http.MethodGet)(h.info))
	return mux
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	req, err := h.readCredentials(r)
	if err != nil {
		h.log.WithFields(r.Context(), logger.Fields{
			"action": "register_invalid_body",
		}).Warnf("register failed: invalid json: %v", err)
		h.writeSession(w, r, authdomain.Session{}, commonerrors.ErrClientInput.WithCause(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	session, err := h.registrar.Register(ctx, regservice.Input{
		Username: req.Username,
		Password: req.Password,
	})
	h.writeSession(w, r, session, err)
}

// login forwards credentials as-is; the authentication service owns their
// rules.
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	req, err := h.readCredentials(r)
	if err != nil {
		h.log.WithFields(r.Context(), logger.Fields{
			"action": "login_invalid_body",
		}).Warnf("login failed: invalid json: %v", err)
		h.writeSession(w, r, authdomain.Session{}, commonerrors.ErrClientInput.WithCause(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	session, err := h.tokens.IssueToken(ctx, req.Username, req.Password)
	h.writeSession(w, r, session, err)
}

func (h *Handler) info(w http.ResponseWriter, r *http.Request) {
	var body infoRequest
	query := r.URL.Query()
	if !query.Has("user_id") || !query.Has("token") {
		if err := decodeOptionalJSON(r, &body); err != nil {
			h.log.WithFields(r.Context(), logger.Fields{
				"action": "info_invalid_body",
			}).Warnf("info failed: invalid json: %v", err)
			h.writeUser(w, r, nil, commonerrors.ErrClientInput.WithCause(err))
			return
		}
	}

	token := commonhttp.Param(r, "token", body.Token)
	if token == "" {
		h.writeUser(w, r, nil, commonerrors.ErrUnauthorized)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	// A rejected token answers 401 whatever user_id holds, so a malformed id
	// is only reported once the caller is known.
	target, parseErr := commonhttp.ParseUserID(commonhttp.Param(r, "user_id", body.UserID.String()))
	if parseErr != nil {
		if _, err := h.profiles.Caller(ctx, token); err != nil {
			h.writeUser(w, r, nil, err)
			return
		}
		h.writeUser(w, r, nil, commonerrors.ErrClientInput.WithCause(parseErr))
		return
	}

	view, err := h.profiles.GetProfile(ctx, token, target)
	if err != nil {
		h.writeUser(w, r, nil, err)
		return
	}
	user := mapper.ProfileToDTO(view)
	h.writeUser(w, r, &user, nil)
}

// readCredentials prefers query parameters and falls back to a JSON body.
func (h *Handler) readCredentials(r *http.Request) (credentialsRequest, error) {
	query := r.URL.Query()
	if query.Has("username") || query.Has("password") {
		return credentialsRequest{
			Username: query.Get("username"),
			Password: query.Get("password"),
		}, nil
	}
	var req credentialsRequest
	err := decodeOptionalJSON(r, &req)
	return req, err
}

func (h *Handler) writeSession(w http.ResponseWriter, r *http.Request, session authdomain.Session, err error) {
	code, msg := h.errHandler.Resolve(r, err)
	resp := sessionResponse{StatusResponse: commonhttp.StatusResponse{StatusCode: code, StatusMsg: msg}}
	if err == nil {
		resp.UserID = session.UserID
		resp.Token = session.Token
	}
	commonhttp.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) writeUser(w http.ResponseWriter, r *http.Request, user *dto.User, err error) {
	code, msg := h.errHandler.Resolve(r, err)
	if err != nil {
		user = nil
	}
	commonhttp.WriteJSON(w, http.StatusOK, userResponse{
		StatusResponse: commonhttp.StatusResponse{StatusCode: code, StatusMsg: msg},
		User:           user,
	})
}

// decodeOptionalJSON treats an empty body as an empty object.
func decodeOptionalJSON(r *http.Request, v any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	err := commonhttp.DecodeJSON(r, v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
