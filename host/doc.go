// Package host provides the host side of the plugin ABI for wasip1 builds.
//
// It runs a plugin module under wazero and drives it the way an ukagaka
// host drives a DLL: request handles are allocated through the module's
// allocate export and handed over with load, loadu and request; response
// handles are read back and freed by the host through deallocate. Guest
// stderr is decoded as JSON log lines and re-emitted through slog.
//
// Scenario replays a scripted sequence of calls against any Target, which
// is what the ukagaka-probe command and the plugintest harness build on.
package host
