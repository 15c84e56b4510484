// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

// Package transport implements the non-blocking UDP packet socket behind
// api.PacketSocket. The socket carries no user-space buffering; a try-op
// either completes against the kernel or reports api.ErrWouldBlock.
package transport
