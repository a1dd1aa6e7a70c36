package audio

import (
	"fmt"
	"os"
	"os/exec"
	"sync"
)

// Host players tried in order. The first one found on PATH is used for the
// life of the process.
var playerCommands = []string{"afplay", "mpv", "mpg123", "ffplay"}

func playerArgs(player, path string) []string {
	switch player {
	case "mpv":
		return []string{"--no-video", "--really-quiet", path}
	case "mpg123":
		return []string{"-q", path}
	case "ffplay":
		return []string{"-nodisp", "-autoexit", "-loglevel", "quiet", path}
	default:
		return []string{path}
	}
}

// Player plays one audio clip at a time through a host media player. Starting
// a new clip preempts the previous one, matching the single shared audio
// element the dashboard exposes.
type Player struct {
	mu      sync.Mutex
	player  string
	current *exec.Cmd
	file    string
}

// NewPlayer locates a usable host player. A missing player is not an error
// here; Play reports it when the first clip is requested.
func NewPlayer() *Player {
	p := &Player{}
	for _, candidate := range playerCommands {
		if _, err := exec.LookPath(candidate); err == nil {
			p.player = candidate
			break
		}
	}
	return p
}

// Available reports whether a host player was found.
func (p *Player) Available() bool {
	return p != nil && p.player != ""
}

// Play writes the clip to a temp file and starts playback, stopping whatever
// was playing before. The process is reaped in the background.
func (p *Player) Play(data []byte) error {
	if p == nil || p.player == "" {
		return fmt.Errorf("no audio player found (tried %v)", playerCommands)
	}
	if len(data) == 0 {
		return fmt.Errorf("empty audio payload")
	}

	tmp, err := os.CreateTemp("", "sourcebot-voice-*.mp3")
	if err != nil {
		return fmt.Errorf("write voice clip: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write voice clip: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write voice clip: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()

	cmd := exec.Command(p.player, playerArgs(p.player, tmp.Name())...)
	if err := cmd.Start(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("start %s: %w", p.player, err)
	}
	p.current = cmd
	p.file = tmp.Name()

	go func(cmd *exec.Cmd, file string) {
		_ = cmd.Wait()
		os.Remove(file)
	}(cmd, tmp.Name())
	return nil
}

// Stop kills any running playback.
func (p *Player) Stop() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *Player) stopLocked() {
	if p.current != nil && p.current.Process != nil {
		_ = p.current.Process.Kill()
	}
	p.current = nil
	p.file = ""
}
