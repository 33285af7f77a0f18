package rediskey

import "fmt"

// Account keys (global convention across services)
const (
	AccountPrefix      = "account"
	ReferralCodePrefix = "account:referral"
	LeaderboardPrefix  = "leaderboard"
)

func NamespaceKey(namespace, key string) string {
	return fmt.Sprintf("%s:%s", namespace, key)
}

// BuildAccountIDKey returns "account:{userID}"
func BuildAccountIDKey(userID string) string {
	return NamespaceKey(AccountPrefix, userID)
}

// BuildReferralCodeKey returns "account:referral:{code}"
func BuildReferralCodeKey(code string) string {
	return NamespaceKey(ReferralCodePrefix, code)
}

// BuildLeaderboardKey returns "leaderboard:{scope}"
func BuildLeaderboardKey(scope string) string {
	return NamespaceKey(LeaderboardPrefix, scope)
}
