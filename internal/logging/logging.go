package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

const permission = 0664

// Builder 로거 생성 옵션
type Builder struct {
	writer  io.Writer
	path    string
	level   zerolog.Level
	console bool
}

// Logger 생성된 로거와 로그 파일 핸들
type Logger struct {
	zerolog.Logger
	file *os.File
}

// New 표준 출력, info 레벨 기본값
func New() *Builder {
	return &Builder{writer: os.Stdout, level: zerolog.InfoLevel}
}

// FromPath 파일에 기록 (추가 모드)
func (b *Builder) FromPath(path string) *Builder {
	b.path = path
	return b
}

// FromWriter 임의의 writer 에 기록
func (b *Builder) FromWriter(w io.Writer) *Builder {
	b.writer = w
	return b
}

// Level 레벨 문자열 적용, 해석할 수 없으면 info
func (b *Builder) Level(level string) *Builder {
	parsed, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		parsed = zerolog.InfoLevel
	}
	b.level = parsed
	return b
}

// Console 사람이 읽기 쉬운 콘솔 포맷
func (b *Builder) Console(enabled bool) *Builder {
	b.console = enabled
	return b
}

// Make 로거 생성
func (b *Builder) Make() (*Logger, error) {
	out := &Logger{}
	writer := b.writer
	if b.path != "" {
		f, err := os.OpenFile(b.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, permission)
		if err != nil {
			return nil, err
		}
		out.file = f
		writer = zerolog.SyncWriter(f)
	}
	if b.console {
		writer = zerolog.ConsoleWriter{Out: writer, TimeFormat: "15:04:05"}
	}
	out.Logger = zerolog.New(writer).Level(b.level).With().Timestamp().Logger()
	return out, nil
}

// Component 컴포넌트 이름이 붙은 하위 로거
func (l *Logger) Component(name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}

// Close 로그 파일 닫기
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// Nop 테스트용 무출력 로거
func Nop() *Logger {
	return &Logger{Logger: zerolog.Nop()}
}
