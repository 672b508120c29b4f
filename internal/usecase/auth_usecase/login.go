package auth

import (
	"context"
	"errors"
	"strings"
	"time"
)

// 在庫を操作できるロール
const RoleOperator = "OPERATOR"

// handlerからusecaseに渡す入力
type LoginInput struct {
	Username string
	Password string
}

// token 形（JwtAccessToken相当）
type JwtAccessToken struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// handlerがJSONにして返す
type LoginOutput struct {
	Username string         `json:"username"`
	Role     string         `json:"role"`
	Token    JwtAccessToken `json:"token"`
}

// ユーザー名またはパスワードが違う
var ErrInvalidCredentials = errors.New("invalid credentials")

// JWTを発行する約束
type AccessTokenIssuer interface {
	Issue(subject string, role string, now time.Time) (token string, expiresAt time.Time, err error)
}

// 入力パスワードと保存したハッシュを比べる約束
type PasswordVerifier interface {
	Verify(plain string, hashed string) bool
}

// 現在の時間
type Clock interface {
	Now() time.Time
}

// オペレーター（1アカウント）のログイン。
// ハッシュは OPERATOR_PASSWORD_HASH で渡す。
type LoginUsecase struct {
	username     string
	passwordHash string
	verifier     PasswordVerifier
	issuer       AccessTokenIssuer
	clock        Clock
}

func NewLoginUsecase(
	username string,
	passwordHash string,
	verifier PasswordVerifier,
	issuer AccessTokenIssuer,
	clock Clock,
) *LoginUsecase {
	if username == "" {
		username = "operator"
	}
	return &LoginUsecase{
		username:     username,
		passwordHash: passwordHash,
		verifier:     verifier,
		issuer:       issuer,
		clock:        clock,
	}
}

// ログイン処理を実行する
func (u *LoginUsecase) Execute(ctx context.Context, in LoginInput) (LoginOutput, error) {
	var out LoginOutput
	if err := ctx.Err(); err != nil {
		return out, err
	}

	//ユーザー名は省略可（省略時は既定のオペレーター）
	name := strings.TrimSpace(in.Username)
	if name != "" && name != u.username {
		return out, ErrInvalidCredentials
	}

	//パスワード照合
	if u.passwordHash == "" || !u.verifier.Verify(in.Password, u.passwordHash) {
		return out, ErrInvalidCredentials
	}

	//AccessToken発行
	now := u.clock.Now()
	accessToken, accessExp, err := u.issuer.Issue(u.username, RoleOperator, now)
	if err != nil {
		return out, err
	}

	out.Username = u.username
	out.Role = RoleOperator
	out.Token = JwtAccessToken{
		AccessToken: accessToken,
		ExpiresIn:   int(accessExp.Sub(now).Seconds()),
	}
	return out, nil
}
