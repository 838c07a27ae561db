// Package memory provides in-process implementations of the parley ports:
// a session store, a script loader, an analytics recorder with a fan-out
// helper, and a fixed locale. They back tests and single-process hosts.
package memory
