// Package redis connects to a Redis server with retry and exposes a
// readiness probe. The resulting client backs the subscription snapshot
// store, so app shells restart with a last-known entitlement state.
//
//	var cfg redis.Config
//	config.MustLoad(&cfg)
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		// terminate: the snapshot store is unavailable
//	}
//	defer client.Close()
//
//	store := subscription.NewRedisStore(client)
package redis
