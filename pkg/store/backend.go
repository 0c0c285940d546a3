package store

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// Backend names, as reported to store hooks.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Backend reports which backend a store target selects. Targets with a
// redis:// or mongodb:// scheme go to the matching remote backend;
// everything else is a file path.
func Backend(target string) string {
	switch {
	case strings.HasPrefix(target, "redis://"):
		return BackendRedis
	case strings.HasPrefix(target, "mongodb://"), strings.HasPrefix(target, "mongodb+srv://"):
		return BackendMongo
	default:
		return BackendFile
	}
}

// IsRemote reports whether the target names a remote backend. Remote stores
// have no manifest sidecar; their records are namespaced inside the backend
// instead.
func IsRemote(target string) bool {
	return Backend(target) != BackendFile
}

// CreateWriter opens the write half of the store named by target. File
// targets are created fresh; remote targets are connected and verified.
//
// Remote targets carry their namespace as the URL fragment:
//
//	redis://localhost:6379#basinA
//	mongodb://localhost:27017/hydrology#basinA
func CreateWriter(ctx context.Context, target string) (Writer, error) {
	switch Backend(target) {
	case BackendRedis:
		addr, ns, err := splitRemoteTarget(target)
		if err != nil {
			return nil, err
		}
		return NewRedisStore(ctx, addr, ns)
	case BackendMongo:
		uri, db, ns, err := splitMongoTarget(target)
		if err != nil {
			return nil, err
		}
		return NewMongoStore(ctx, uri, db, ns)
	default:
		return CreateFile(target)
	}
}

// OpenReader opens the read half of the store named by target.
func OpenReader(ctx context.Context, target string) (Reader, error) {
	switch Backend(target) {
	case BackendRedis:
		addr, ns, err := splitRemoteTarget(target)
		if err != nil {
			return nil, err
		}
		return NewRedisStore(ctx, addr, ns)
	case BackendMongo:
		uri, db, ns, err := splitMongoTarget(target)
		if err != nil {
			return nil, err
		}
		return NewMongoStore(ctx, uri, db, ns)
	default:
		return OpenFile(target)
	}
}

// splitRemoteTarget extracts host address and namespace from a remote URL.
func splitRemoteTarget(target string) (addr, namespace string, err error) {
	u, err := url.Parse(target)
	if err != nil {
		return "", "", fmt.Errorf("parse store target %q: %w", target, err)
	}
	if u.Host == "" {
		return "", "", fmt.Errorf("store target %q has no host", target)
	}
	namespace = u.Fragment
	if namespace == "" {
		namespace = "default"
	}
	return u.Host, namespace, nil
}

// splitMongoTarget extracts the connection URI, database, and namespace from
// a MongoDB URL. The fragment is stripped before the URI reaches the driver.
func splitMongoTarget(target string) (uri, database, namespace string, err error) {
	u, err := url.Parse(target)
	if err != nil {
		return "", "", "", fmt.Errorf("parse store target %q: %w", target, err)
	}
	namespace = u.Fragment
	if namespace == "" {
		namespace = "default"
	}
	database = strings.Trim(u.Path, "/")
	if database == "" {
		database = "streamnet"
	}
	u.Fragment = ""
	return u.String(), database, namespace, nil
}
