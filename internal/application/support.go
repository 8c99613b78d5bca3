package application

import (
	"expvar"
	"io"

	"github.com/sirupsen/logrus"
)

// Counters published under /api/debug/vars.
var (
	metricProfilesUpdated  = expvar.NewInt("profiles_updated")
	metricUsersDeleted     = expvar.NewInt("users_deleted")
	metricCascadeFailures  = expvar.NewInt("cascade_failures")
	metricCascadesResumed  = expvar.NewInt("cascades_resumed")
	metricAvatarsStored    = expvar.NewInt("avatars_stored")
	metricAvatarRejections = expvar.NewInt("avatar_rejections")
	metricWallPostsCreated = expvar.NewInt("wall_posts_created")
)

func orNop(l *logrus.Logger) *logrus.Logger {
	if l != nil {
		return l
	}
	n := logrus.New()
	n.SetOutput(io.Discard)
	return n
}
