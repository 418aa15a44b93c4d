// Package dreplay contains [Hub], a multicast operator
// that shares one upstream subscription among many consumers
// and replays a bounded history of values to consumers that join late.
//
// Each consumer is paced by its own demand.
// The hub does not queue values per consumer:
// a live value reaches only those consumers with outstanding demand
// at the moment it arrives.
// The only retained history is the shared replay buffer
// of the most recent [HubConfig.ReplayCapacity] values.
//
// Once upstream terminates, the terminal signal is latched.
// Every consumer, including those subscribing afterward,
// receives the replay buffer followed by that terminal signal exactly once.
package dreplay
