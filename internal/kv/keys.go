package kv

import "fmt"

const (
	RevokedTokenKeyPrefix = "blacklist:%s"
	UserTokensKeyPrefix   = "tokens:user:%d"
)

func RevokedTokenKey(jti string) string {
	return fmt.Sprintf(RevokedTokenKeyPrefix, jti)
}

func UserTokensKey(userID uint) string {
	return fmt.Sprintf(UserTokensKeyPrefix, userID)
}
