package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jlucaswrk/coldservice-recife/internal/db"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Tokens live a full shift; field devices only re-authenticate daily.
const accessTokenTTL = 24 * time.Hour

type Service struct {
	secret []byte
	db     db.Querier
}

type Claims struct {
	TechnicianID string `json:"technician_id"`
	jwt.RegisteredClaims
}

func NewService(secret string, q db.Querier) *Service {
	return &Service{
		secret: []byte(secret),
		db:     q,
	}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (Account, TokenResponse, error) {
	if req.TechnicianID == "" || req.Email == "" || req.Password == "" {
		return Account{}, TokenResponse{}, errors.New("technician_id, email, password required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return Account{}, TokenResponse{}, err
	}

	account := Account{
		ID:           uuid.NewString(),
		TechnicianID: req.TechnicianID,
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO technician_accounts (id, technician_id, email, password_hash, full_name)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at
	`, account.ID, account.TechnicianID, account.Email, account.PasswordHash, account.FullName)
	if err := row.Scan(&account.CreatedAt); err != nil {
		return Account{}, TokenResponse{}, err
	}

	tokens, err := s.GenerateToken(account.TechnicianID)
	if err != nil {
		return Account{}, TokenResponse{}, err
	}
	return account, tokens, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (Account, TokenResponse, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, technician_id, email, password_hash, COALESCE(full_name,''), created_at
		FROM technician_accounts WHERE email = $1
	`, req.Email)

	var account Account
	if err := row.Scan(&account.ID, &account.TechnicianID, &account.Email, &account.PasswordHash, &account.FullName, &account.CreatedAt); err != nil {
		return Account{}, TokenResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		return Account{}, TokenResponse{}, errors.New("invalid credentials")
	}

	tokens, err := s.GenerateToken(account.TechnicianID)
	if err != nil {
		return Account{}, TokenResponse{}, err
	}
	return account, tokens, nil
}

func (s *Service) GenerateToken(technicianID string) (TokenResponse, error) {
	claims := Claims{
		TechnicianID: technicianID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(accessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return TokenResponse{}, err
	}

	return TokenResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int64(accessTokenTTL.Seconds()),
	}, nil
}

func (s *Service) ValidateAccessToken(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(_ *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return "", errors.New("token invalid")
	}
	return claims.TechnicianID, nil
}
