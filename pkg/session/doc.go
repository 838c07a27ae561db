/*
Package session implements playback session management and persistence orchestration.

A Manager turns the single-threaded engine into a service: every action on
a session loads its snapshot, resumes an engine on the script it was started
with, applies the action and saves the new snapshot, all under a per-session
lock. Local locks are reference counted; an optional DistributedLocker
extends the guarantee across replicas.
*/
package session
