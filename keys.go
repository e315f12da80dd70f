// FILE: itcw/config/keys.go
package config

// Key is one of the derived configuration keys. The set is closed: every Key
// has a derivation run by Resolver.Value.
type Key int

// Derived keys, in catalogue order.
const (
	AppUID Key = iota + 1
	AppGID
	AppUser
	AppPort
	AppJobs
	AppTimeout
	AppWorkers
	AppModule
	AppRepoRoot
	AppVersion
	AppBranch
	AppRevision
	AppRemoteOriginURL
	AppDepEnv
	AppTagName
	AppSrcTar
	AppRepoName
	AppProjName
	AppProjPath
	AppBotPath
	AppDBPath
	AppTestPath
	AppLsRemote
	AppGsmStatus
)

var keyNames = map[Key]string{
	AppUID:             "APP_UID",
	AppGID:             "APP_GID",
	AppUser:            "APP_USER",
	AppPort:            "APP_PORT",
	AppJobs:            "APP_JOBS",
	AppTimeout:         "APP_TIMEOUT",
	AppWorkers:         "APP_WORKERS",
	AppModule:          "APP_MODULE",
	AppRepoRoot:        "APP_REPOROOT",
	AppVersion:         "APP_VERSION",
	AppBranch:          "APP_BRANCH",
	AppRevision:        "APP_REVISION",
	AppRemoteOriginURL: "APP_REMOTE_ORIGIN_URL",
	AppDepEnv:          "APP_DEPENV",
	AppTagName:         "APP_TAGNAME",
	AppSrcTar:          "APP_SRCTAR",
	AppRepoName:        "APP_REPONAME",
	AppProjName:        "APP_PROJNAME",
	AppProjPath:        "APP_PROJPATH",
	AppBotPath:         "APP_BOTPATH",
	AppDBPath:          "APP_DBPATH",
	AppTestPath:        "APP_TESTPATH",
	AppLsRemote:        "APP_LS_REMOTE",
	AppGsmStatus:       "APP_GSM_STATUS",
}

var keysByName = func() map[string]Key {
	m := make(map[string]Key, len(keyNames))
	for k, name := range keyNames {
		m[name] = k
	}
	return m
}()

// String returns the environment-style name of the key, e.g. "APP_VERSION".
func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return "Key(invalid)"
}

// Valid reports whether k is part of the catalogue.
func (k Key) Valid() bool {
	_, ok := keyNames[k]
	return ok
}

// ParseKey returns the catalogue key named name.
func ParseKey(name string) (Key, bool) {
	k, ok := keysByName[name]
	return k, ok
}

// Keys returns every catalogue key in catalogue order.
func Keys() []Key {
	keys := make([]Key, 0, len(keyNames))
	for k := AppUID; k <= AppGsmStatus; k++ {
		keys = append(keys, k)
	}
	return keys
}
