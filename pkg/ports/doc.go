/*
Package ports defines the driven ports (interfaces) for the parley engine.

These interfaces decouple the dialogue core from the surfaces that host it:
the display that shows lines and choices, the analytics sink, the locale
source and the session storage.

# Key Interfaces

  - Display: Receives the current unit and choice feedback.
  - AnalyticsRecorder: Receives one event per choice made.
  - LocaleProvider: Supplies the active language code.
  - ScriptLoader: Resolves compiled scripts by name (e.g. a registry or directory).
  - StateStore: Persists and loads session snapshots.
  - DistributedLocker: Provides distributed locking for handling concurrent session access.
*/
package ports
