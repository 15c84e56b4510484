// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package reactor provides readiness notification backends behind the
// api.Reactor contract: level- and edge-triggered epoll on Linux, a
// level-triggered select(2) backend on POSIX platforms, and a constructor
// error stub elsewhere. All backends expose the same register/modify/wait
// surface so the event loop never changes with the mechanism.
package reactor
