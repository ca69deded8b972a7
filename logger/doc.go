/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

/*
Package logger provides the structured logging facility consumed by the
reactor server.

It is a thin, level-filtered wrapper around logrus with a fields overlay
(see the fields subpackage) carried through a context-scoped store, and a
caller-tagged Entry used by the acceptor and connection state machine to
report per-connection conditions. Entries are written synchronously, on
the goroutine that logs them.

Unlike a general-purpose logging package this one favors a single output
destination (an io.Writer, stderr by default) over multi-sink hook
pipelines: the server core never needs syslog or file rotation, only a
place to put fatal-configuration and per-connection-error messages.

Sub-packages:

  - level: log level definitions, conversions, and comparisons.
  - fields: structured field management with clone and merge operations.
*/
package logger
