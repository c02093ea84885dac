package cmd

import (
	"fmt"
	"os"
)

// Completion outputs shell completion scripts
func Completion(shell string) {
	switch shell {
	case "bash":
		fmt.Print(bashCompletion)
	case "zsh":
		fmt.Print(zshCompletion)
	case "fish":
		fmt.Print(fishCompletion)
	default:
		fmt.Fprintf(os.Stderr, "Unknown shell: %s\nSupported: bash, zsh, fish\n", shell)
		os.Exit(1)
	}
}

const bashCompletion = `_securelock() {
    local cur prev words cword
    _init_completion || return

    local commands="lock unlock init put get rm ls status passwd diff compact keyring help completion"

    if [[ $cword -eq 1 ]]; then
        COMPREPLY=($(compgen -W "$commands" -- "$cur"))
        return
    fi

    local cmd="${words[1]}"
    case "$cmd" in
        lock|unlock)
            if [[ "$prev" == "-f" || "$prev" == "-o" ]]; then
                _filedir
            else
                COMPREPLY=($(compgen -W "-f -o -v -config" -- "$cur"))
            fi
            ;;
        put)
            if [[ "$prev" == "-f" ]]; then
                _filedir
            elif [[ "$cur" == -* ]]; then
                COMPREPLY=($(compgen -W "-f -v -config" -- "$cur"))
            fi
            ;;
        get|rm)
            local entries
            entries=$(securelock ls 2>/dev/null | tail -n +2 | awk '{print $1}')
            COMPREPLY=($(compgen -W "$entries" -- "$cur"))
            ;;
        diff)
            if [[ $cword -eq 2 ]]; then
                local entries
                entries=$(securelock ls 2>/dev/null | tail -n +2 | awk '{print $1}')
                COMPREPLY=($(compgen -W "$entries" -- "$cur"))
            else
                _filedir
            fi
            ;;
        keyring)
            COMPREPLY=($(compgen -W "save delete status" -- "$cur"))
            ;;
        help)
            COMPREPLY=($(compgen -W "$commands" -- "$cur"))
            ;;
        completion)
            COMPREPLY=($(compgen -W "bash zsh fish" -- "$cur"))
            ;;
    esac
}

complete -F _securelock securelock
`

const zshCompletion = `#compdef securelock

_securelock() {
    local -a commands
    commands=(
        'lock:Lock text into a printable locked value'
        'unlock:Recover text from a locked value'
        'init:Create a .securelock lockbox in current directory'
        'put:Lock text into the lockbox under a name'
        'get:Unlock a named entry from the lockbox'
        'rm:Remove entries from the lockbox'
        'ls:List lockbox entries'
        'status:Show lockbox status'
        'passwd:Change lockbox password'
        'diff:Compare an entry with a local file'
        'compact:Compact lockbox to reclaim disk space'
        'keyring:Manage password in OS keyring'
        'help:Show help for a command'
        'completion:Generate shell completions'
    )

    _arguments -C \
        '1: :->command' \
        '*: :->args'

    case "$state" in
        command)
            _describe -t commands 'securelock commands' commands
            ;;
        args)
            case "${words[2]}" in
                lock|unlock)
                    _arguments \
                        '-f[Read input from file]:file:_files' \
                        '-o[Write output to file]:file:_files' \
                        '-v[Verbose logging]' \
                        '-config[Config file]:file:_files'
                    ;;
                put)
                    _arguments \
                        '-f[Read text from file]:file:_files' \
                        '-v[Verbose logging]' \
                        '1:entry name:_securelock_entries'
                    ;;
                get)
                    _arguments \
                        '-o[Write text to file]:file:_files' \
                        '1:entry name:_securelock_entries'
                    ;;
                rm)
                    _arguments '*:entry name:_securelock_entries'
                    ;;
                diff)
                    _arguments \
                        '1:entry name:_securelock_entries' \
                        '2:file:_files'
                    ;;
                keyring)
                    _values 'subcommand' save delete status
                    ;;
                help)
                    _describe -t commands 'securelock commands' commands
                    ;;
                completion)
                    _values 'shell' bash zsh fish
                    ;;
            esac
            ;;
    esac
}

_securelock_entries() {
    local -a entries
    entries=(${(f)"$(securelock ls 2>/dev/null | tail -n +2 | awk '{print $1}')"})
    _describe -t entries 'lockbox entries' entries
}

_securelock "$@"
`

const fishCompletion = `# securelock fish completions

set -l commands lock unlock init put get rm ls status passwd diff compact keyring help completion

complete -c securelock -f

function __securelock_entries
    securelock ls 2>/dev/null | tail -n +2 | awk '{print $1}'
end

# Commands
complete -c securelock -n "not __fish_seen_subcommand_from $commands" -a lock -d 'Lock text'
complete -c securelock -n "not __fish_seen_subcommand_from $commands" -a unlock -d 'Unlock a locked value'
complete -c securelock -n "not __fish_seen_subcommand_from $commands" -a init -d 'Create a .securelock lockbox'
complete -c securelock -n "not __fish_seen_subcommand_from $commands" -a put -d 'Store text under a name'
complete -c securelock -n "not __fish_seen_subcommand_from $commands" -a get -d 'Unlock a named entry'
complete -c securelock -n "not __fish_seen_subcommand_from $commands" -a rm -d 'Remove entries'
complete -c securelock -n "not __fish_seen_subcommand_from $commands" -a ls -d 'List entries'
complete -c securelock -n "not __fish_seen_subcommand_from $commands" -a status -d 'Show lockbox status'
complete -c securelock -n "not __fish_seen_subcommand_from $commands" -a passwd -d 'Change lockbox password'
complete -c securelock -n "not __fish_seen_subcommand_from $commands" -a diff -d 'Compare entry with a file'
complete -c securelock -n "not __fish_seen_subcommand_from $commands" -a compact -d 'Compact lockbox'
complete -c securelock -n "not __fish_seen_subcommand_from $commands" -a keyring -d 'Manage password in OS keyring'
complete -c securelock -n "not __fish_seen_subcommand_from $commands" -a help -d 'Show help'
complete -c securelock -n "not __fish_seen_subcommand_from $commands" -a completion -d 'Generate completions'

# lock and unlock flags
complete -c securelock -n "__fish_seen_subcommand_from lock unlock put" -s f -r -F -d 'Read input from file'
complete -c securelock -n "__fish_seen_subcommand_from lock unlock get" -s o -r -F -d 'Write output to file'

# entry names
complete -c securelock -n "__fish_seen_subcommand_from get rm diff" -a "(__securelock_entries)"

# keyring subcommands
complete -c securelock -n "__fish_seen_subcommand_from keyring" -a "save delete status"

# help completions
complete -c securelock -n "__fish_seen_subcommand_from help" -a "$commands"

# completion completions
complete -c securelock -n "__fish_seen_subcommand_from completion" -a "bash zsh fish"
`
